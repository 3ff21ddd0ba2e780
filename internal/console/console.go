// Package console runs the interactive farmer's weather guide on a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/rewired-gh/whetherai/internal/advice"
	"github.com/rewired-gh/whetherai/internal/inference"
	"github.com/rewired-gh/whetherai/internal/models"
	"github.com/rewired-gh/whetherai/internal/openweather"
	"github.com/rewired-gh/whetherai/internal/service"
)

// ErrInputClosed is returned when input ends before a required answer.
var ErrInputClosed = errors.New("input closed")

// Source returns the current conditions for a place name.
type Source interface {
	CurrentConditions(ctx context.Context, location string) (models.Conditions, error)
}

// Predictor turns evidence into rain and sunlight probabilities.
type Predictor interface {
	Predict(ev inference.Evidence) (inference.Prediction, error)
}

type styles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	warn    lipgloss.Style
	tip     lipgloss.Style
	note    lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#25A065")),
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		label:   r.NewStyle().Foreground(lipgloss.Color("#04B575")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
		tip:     r.NewStyle().Foreground(lipgloss.Color("#DDDDDD")),
		note:    r.NewStyle().Italic(true).Foreground(lipgloss.Color("#626262")),
	}
}

// Session is one run of the interactive guide.
type Session struct {
	in         *bufio.Reader
	out        io.Writer
	source     Source
	predictor  Predictor
	thresholds service.Thresholds
	style      styles
}

// NewSession creates a session reading answers from in and writing to out.
func NewSession(in io.Reader, out io.Writer, source Source, predictor Predictor, thresholds service.Thresholds) *Session {
	return &Session{
		in:         bufio.NewReader(in),
		out:        out,
		source:     source,
		predictor:  predictor,
		thresholds: thresholds,
		style:      newStyles(out),
	}
}

// Run asks for a place, shows its weather and prints the farming advice.
// When the weather cannot be fetched, humidity and warmth are asked instead.
// Cloud cover is always asked.
func (s *Session) Run(ctx context.Context) error {
	s.printf("\n%s\n\n", s.style.title.Render("🌾 Welcome to the AI Weather Guide for Farmers 🌾"))

	city, err := s.ask("📍 Enter the name of your city or village: ")
	if err != nil {
		return err
	}

	conditions, fetchErr := s.source.CurrentConditions(ctx, city)
	if fetchErr == nil {
		s.showConditions(city, conditions)
	} else {
		s.printf("%s\n", s.style.warn.Render(fetchMessage(fetchErr)))
		s.printf("%s\n\n", s.style.warn.Render("⚠️ Unable to fetch real-time weather. Let's continue with manual inputs."))
	}

	cloudy, err := s.askYesNo("☁️ Is the sky mostly covered with clouds? (yes/no): ")
	if err != nil {
		return err
	}

	var ev inference.Evidence
	if fetchErr == nil {
		ev = service.Derive(conditions, s.thresholds)
		ev.CloudCover = inference.NewEvidence(cloudy, false, false).CloudCover
	} else {
		humid, err := s.askYesNo("💦 Is the air humid (feels sticky)? (yes/no): ")
		if err != nil {
			return err
		}
		warm, err := s.askYesNo("🌞 Is the weather warm? (yes/no): ")
		if err != nil {
			return err
		}
		ev = inference.NewEvidence(cloudy, humid, warm)
	}

	prediction, err := s.predictor.Predict(ev)
	if err != nil {
		return fmt.Errorf("failed to predict: %w", err)
	}

	s.showAdvice(advice.For(prediction))
	return nil
}

func (s *Session) showConditions(city string, c models.Conditions) {
	s.printf("\n%s\n", s.style.heading.Render(fmt.Sprintf("🌍 Weather in %s Today:", capitalize(city))))
	s.printf("%s %s°C\n", s.style.label.Render("🌡️ Temperature:"), strconv.FormatFloat(c.TemperatureC, 'f', -1, 64))
	s.printf("%s %d%%\n", s.style.label.Render("💧 Humidity:"), c.HumidityPct)
	s.printf("%s %s\n\n", s.style.label.Render("🌥️ Sky Condition:"), capitalize(c.Description))
}

func (s *Session) showAdvice(a advice.Advice) {
	s.printf("\n%s\n\n", s.style.heading.Render("🔮 AI-Based Farming Weather Advice:"))

	s.printf("%s\n", s.style.heading.Render(a.Rain.Headline))
	for _, tip := range a.Rain.Tips {
		s.printf("%s\n", s.style.tip.Render("- "+tip))
	}

	s.printf("\n%s\n", s.style.heading.Render(a.Sun.Headline))
	for _, tip := range a.Sun.Tips {
		s.printf("%s\n", s.style.tip.Render("- "+tip))
	}

	s.printf("\n%s\n\n", s.style.note.Render("📌 Note: "+a.Note))
}

// ask prints prompt and returns the trimmed answer line.
func (s *Session) ask(prompt string) (string, error) {
	s.printf("%s", prompt)
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// askYesNo treats only "yes" (any case) as yes.
func (s *Session) askYesNo(prompt string) (bool, error) {
	answer, err := s.ask(prompt)
	if err != nil {
		return false, err
	}
	return strings.ToLower(answer) == "yes", nil
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func fetchMessage(err error) string {
	var apiErr *openweather.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("⚠️ Error: %s. Please enter a correct city name.", apiErr.Error())
	}
	return "🚨 No internet connection. Please check and try again."
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
