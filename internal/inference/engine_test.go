package inference

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/rewired-gh/whetherai/internal/bayes"
)

func mustEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func TestPredict_AllCombinations(t *testing.T) {
	e := mustEngine(t)

	rain := map[[2]int]float64{
		{0, 0}: 0.2,
		{0, 1}: 0.4,
		{1, 0}: 0.3,
		{1, 1}: 0.6,
	}
	sun := map[int]float64{0: 0.1, 1: 0.6}

	for cloud := 0; cloud < 2; cloud++ {
		for humid := 0; humid < 2; humid++ {
			for temp := 0; temp < 2; temp++ {
				got, err := e.Predict(Bits(cloud, humid, temp))
				if err != nil {
					t.Fatalf("Predict(%d,%d,%d) failed: %v", cloud, humid, temp, err)
				}
				if math.Abs(got.RainChance-rain[[2]int{cloud, humid}]) > 1e-9 {
					t.Errorf("Predict(%d,%d,%d).RainChance = %v, expected %v",
						cloud, humid, temp, got.RainChance, rain[[2]int{cloud, humid}])
				}
				if math.Abs(got.Sunlight-sun[temp]) > 1e-9 {
					t.Errorf("Predict(%d,%d,%d).Sunlight = %v, expected %v",
						cloud, humid, temp, got.Sunlight, sun[temp])
				}
			}
		}
	}
}

func TestPredict_Example(t *testing.T) {
	e := mustEngine(t)

	got, err := e.Predict(Bits(0, 1, 1))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if math.Abs(got.RainChance-0.4) > 1e-9 || math.Abs(got.Sunlight-0.6) > 1e-9 {
		t.Errorf("Predict(0,1,1) = %+v, expected rain 0.4 and sunlight 0.6", got)
	}
}

func TestPredict_Deterministic(t *testing.T) {
	e := mustEngine(t)

	first, err := e.Predict(Bits(1, 0, 1))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	second, err := e.Predict(Bits(1, 0, 1))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if first != second {
		t.Errorf("Predict returned %+v then %+v for the same evidence", first, second)
	}
}

func TestPredict_Concurrent(t *testing.T) {
	e := mustEngine(t)
	want, err := e.Predict(Bits(1, 1, 0))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.Predict(Bits(1, 1, 0))
			if err != nil {
				errs <- err
				return
			}
			if got != want {
				errs <- errors.New("concurrent prediction differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestPredict_InvalidEvidence(t *testing.T) {
	e := mustEngine(t)
	one, two, neg := 1, 2, -1

	tests := []struct {
		name     string
		evidence Evidence
	}{
		{"missing cloud cover", Evidence{Humidity: &one, Temperature: &one}},
		{"missing humidity", Evidence{CloudCover: &one, Temperature: &one}},
		{"missing temperature", Evidence{CloudCover: &one, Humidity: &one}},
		{"all missing", Evidence{}},
		{"value two", Evidence{CloudCover: &two, Humidity: &one, Temperature: &one}},
		{"negative value", Evidence{CloudCover: &one, Humidity: &one, Temperature: &neg}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Predict(tt.evidence)
			if !errors.Is(err, bayes.ErrInvalidEvidence) {
				t.Fatalf("Expected ErrInvalidEvidence, got %v", err)
			}
			if got != (Prediction{}) {
				t.Errorf("Expected no prediction, got %+v", got)
			}
		})
	}
}

func TestNewEvidence_Normalizes(t *testing.T) {
	ev := NewEvidence(true, false, true)
	a, err := ev.Assignment()
	if err != nil {
		t.Fatalf("Assignment failed: %v", err)
	}
	if a[CloudCover] != 1 || a[Humidity] != 0 || a[Temperature] != 1 {
		t.Errorf("NewEvidence(true,false,true) = %v", a)
	}

	e := mustEngine(t)
	fromBools, err := e.Predict(NewEvidence(false, true, true))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	fromInts, err := e.Predict(Bits(0, 1, 1))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if fromBools != fromInts {
		t.Errorf("Boolean and integer evidence disagree: %+v vs %+v", fromBools, fromInts)
	}
}

func TestTables_RowSums(t *testing.T) {
	e := mustEngine(t)
	for _, v := range e.Network().Variables() {
		cpt, _ := e.Network().CPT(v.Name)
		for i, row := range cpt.Rows {
			sum := 0.0
			for _, p := range row {
				sum += p
			}
			if math.Abs(sum-1) > 1e-6 {
				t.Errorf("%s row %d sums to %v", v.Name, i, sum)
			}
		}
	}
}

func TestNewEngineFromTables_CorruptRow(t *testing.T) {
	cpts := Tables()
	for i := range cpts {
		if cpts[i].Variable == RainChance {
			cpts[i].Rows[2] = []float64{0.6, 0.3}
		}
	}

	e, err := NewEngineFromTables(cpts)
	if err == nil {
		t.Fatal("Expected construction to fail with a row summing to 0.9")
	}
	if !errors.Is(err, bayes.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
	if e != nil {
		t.Error("Expected no engine on configuration error")
	}
}
