package inference

import "github.com/rewired-gh/whetherai/internal/bayes"

// Variable names of the weather network.
const (
	CloudCover  = "CloudCover"
	Humidity    = "Humidity"
	Temperature = "Temperature"
	RainChance  = "RainChance"
	Sunlight    = "Sunlight"
)

// Variables returns the five binary variables of the weather network.
func Variables() []bayes.Variable {
	return []bayes.Variable{
		{Name: CloudCover, Card: 2},
		{Name: Humidity, Card: 2},
		{Name: Temperature, Card: 2},
		{Name: RainChance, Card: 2},
		{Name: Sunlight, Card: 2},
	}
}

// Edges returns the fixed structure of the weather network.
func Edges() []bayes.Edge {
	return []bayes.Edge{
		{From: CloudCover, To: RainChance},
		{From: Humidity, To: RainChance},
		{From: Temperature, To: Sunlight},
	}
}

// Tables returns a fresh copy of the conditional probability tables.
// Each row is [P(state=0), P(state=1)].
func Tables() []bayes.CPT {
	return []bayes.CPT{
		{Variable: CloudCover, Rows: [][]float64{{0.6, 0.4}}},
		{Variable: Humidity, Rows: [][]float64{{0.7, 0.3}}},
		{Variable: Temperature, Rows: [][]float64{{0.5, 0.5}}},
		{
			Variable: RainChance,
			Parents:  []string{CloudCover, Humidity},
			Rows: [][]float64{
				{0.8, 0.2}, // clear, dry
				{0.6, 0.4}, // clear, humid
				{0.7, 0.3}, // cloudy, dry
				{0.4, 0.6}, // cloudy, humid
			},
		},
		{
			Variable: Sunlight,
			Parents:  []string{Temperature},
			Rows: [][]float64{
				{0.9, 0.1},
				{0.4, 0.6},
			},
		},
	}
}
