package providers

import (
	"context"
	"time"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/config"
)

const pestProviderID = "pest"

// pestAdvice is the curated per-crop pest reference. It ships with the
// binary: pest guidance changes rarely and must work fully offline.
var pestAdvice = map[string][]map[string]interface{}{
	"wheat": {
		{"pest": "aphid", "symptom": "curled yellowing leaves", "treatment": "spray imidacloprid 17.8 SL at 0.3 ml per litre"},
		{"pest": "termite", "symptom": "wilting plants in patches", "treatment": "apply chlorpyrifos 20 EC with irrigation"},
	},
	"rice": {
		{"pest": "stem borer", "symptom": "dead hearts in tillering stage", "treatment": "apply cartap hydrochloride 4G granules"},
		{"pest": "brown planthopper", "symptom": "hopper burn in patches", "treatment": "drain field and spray buprofezin"},
	},
	"cotton": {
		{"pest": "bollworm", "symptom": "holes in bolls", "treatment": "spray emamectin benzoate 5 SG"},
		{"pest": "whitefly", "symptom": "sooty mould on leaves", "treatment": "spray diafenthiuron 50 WP"},
	},
	"sugarcane": {
		{"pest": "early shoot borer", "symptom": "dead hearts in young cane", "treatment": "apply fipronil granules at planting"},
	},
	"tomato": {
		{"pest": "fruit borer", "symptom": "holes in fruit", "treatment": "install pheromone traps, spray spinosad"},
	},
	"potato": {
		{"pest": "late blight", "symptom": "dark water-soaked leaf spots", "treatment": "spray mancozeb plus metalaxyl"},
	},
	"onion": {
		{"pest": "thrips", "symptom": "silvery streaks on leaves", "treatment": "spray fipronil 5 SC"},
	},
	"mustard": {
		{"pest": "aphid", "symptom": "colonies on flowering shoots", "treatment": "spray dimethoate 30 EC"},
	},
}

// generalPestAdvice covers crops without a curated entry.
var generalPestAdvice = []map[string]interface{}{
	{"pest": "general", "symptom": "visible insect damage", "treatment": "use neem oil 5 ml per litre, consult the local Krishi Vigyan Kendra"},
}

// PestAdapter serves the static pest reference. It never goes upstream,
// so fetches always succeed and the default equals the fetch result.
type PestAdapter struct {
	cfg config.ProviderConfig
}

func NewPestAdapter(cfg config.ProviderConfig) *PestAdapter {
	return &PestAdapter{cfg: cfg}
}

func (a *PestAdapter) ID() string             { return pestProviderID }
func (a *PestAdapter) TTL() time.Duration     { return a.cfg.TTLDuration() }
func (a *PestAdapter) Timeout() time.Duration { return a.cfg.TimeoutDuration() }

func (a *PestAdapter) Fetch(_ context.Context, p Params) (map[string]interface{}, error) {
	advice, ok := pestAdvice[p.Crop]
	if !ok {
		advice = generalPestAdvice
	}
	return map[string]interface{}{
		"crop":   p.Crop,
		"advice": advice,
	}, nil
}

func (a *PestAdapter) Default(p Params) map[string]interface{} {
	payload, _ := a.Fetch(context.Background(), p)
	return payload
}
