package services

import (
	"embed"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	types "github.com/mindmirror/mindmirror-backend/internal/domain"
	"github.com/mindmirror/mindmirror-backend/internal/platform/logger"
)

//go:embed responses.yaml
var responseCatalogFS embed.FS

// fallback replies used when the YAML catalog is missing, invalid or lacks a mood
var fallbackResponses = map[types.Mood][]string{
	types.MoodHappy: {
		"It's wonderful to see you're feeling happy! Keep spreading that positivity.",
		"Your happiness is contagious! Remember these moments when things get tough.",
		"Joy is a powerful emotion. Cherish this feeling and let it guide your day.",
	},
	types.MoodSad: {
		"Take a deep breath; everything will be okay. It's okay to feel sad sometimes.",
		"I'm sorry you're feeling down. Remember that tough times don't last, but strong people do.",
		"Sadness is a part of life. Be gentle with yourself and know that brighter days are ahead.",
	},
	types.MoodAngry: {
		"I understand you're feeling angry. Take a moment to breathe and collect your thoughts.",
		"Anger is a natural emotion. Try channeling it into something productive or take a walk.",
		"Your feelings are valid. Consider what's causing this anger and how you can address it constructively.",
	},
	types.MoodAnxious: {
		"I hear you're feeling anxious. Try focusing on your breathing for a few minutes.",
		"Anxiety can be overwhelming. Remember that you've overcome challenges before and you will again.",
		"Take one moment at a time. You don't have to solve everything at once.",
	},
	types.MoodExcited: {
		"Your excitement is wonderful! Enjoy this feeling and let it motivate you.",
		"It's great to see you so energized! Channel this excitement into something meaningful.",
		"Excitement is a powerful emotion. Use this energy to pursue your goals.",
	},
	types.MoodNeutral: {
		"Sometimes feeling neutral is perfectly fine. It gives you a moment of peace.",
		"A calm state of mind can be refreshing. What would you like to do with this moment?",
		"Neutral feelings can be a good foundation. What emotion would you like to cultivate today?",
	},
}

type ResponseCatalog map[types.Mood][]string

type yamlResponseCatalog struct {
	Version   int                 `yaml:"version"`
	Responses map[string][]string `yaml:"responses"`
}

// Responder picks a canned supportive reply for a mood.
type Responder interface {
	Select(mood types.Mood) string
	Candidates(mood types.Mood) []string
}

type responder struct {
	log     *logger.Logger
	catalog ResponseCatalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewResponder builds a Responder over catalog. A nil src seeds from the clock.
func NewResponder(log *logger.Logger, catalog ResponseCatalog, src rand.Source) Responder {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1|1)
	}
	return &responder{
		log:     log.With("service", "Responder"),
		catalog: completeCatalog(catalog),
		rng:     rand.New(src),
	}
}

func (r *responder) Select(mood types.Mood) string {
	candidates := r.Candidates(mood)
	r.mu.Lock()
	i := r.rng.IntN(len(candidates))
	r.mu.Unlock()
	return candidates[i]
}

// Candidates returns the reply list for mood, or the neutral list for unknown moods.
func (r *responder) Candidates(mood types.Mood) []string {
	if list, ok := r.catalog[mood]; ok {
		return list
	}
	return r.catalog[types.MoodNeutral]
}

// LoadResponseCatalog reads the catalog from path, or from the embedded file
// when path is empty. Moods the file omits are filled from the built-in table.
func LoadResponseCatalog(log *logger.Logger, path string) ResponseCatalog {
	data, source, err := readResponseCatalog(path)
	if err != nil {
		log.Warn("response catalog unreadable; using built-in replies", "source", source, "error", err)
		return completeCatalog(nil)
	}
	catalog, err := parseResponseCatalog(data)
	if err != nil {
		log.Warn("response catalog invalid; using built-in replies", "source", source, "error", err)
		return completeCatalog(nil)
	}
	for _, mood := range types.Moods {
		if len(catalog[mood]) == 0 {
			log.Warn("response catalog missing mood; using built-in replies", "source", source, "mood", mood)
		}
	}
	return completeCatalog(catalog)
}

func readResponseCatalog(path string) ([]byte, string, error) {
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		return data, path, err
	}
	data, err := responseCatalogFS.ReadFile("responses.yaml")
	return data, "embedded", err
}

func parseResponseCatalog(data []byte) (ResponseCatalog, error) {
	var raw yamlResponseCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw.Responses) == 0 {
		return nil, fmt.Errorf("no responses defined")
	}
	out := ResponseCatalog{}
	for key, list := range raw.Responses {
		mood, err := types.ParseMood(key)
		if err != nil {
			return nil, fmt.Errorf("responses.%s: %w", key, err)
		}
		cleaned := make([]string, 0, len(list))
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				cleaned = append(cleaned, s)
			}
		}
		out[mood] = cleaned
	}
	return out, nil
}

// completeCatalog guarantees a non-empty list for every mood.
func completeCatalog(in ResponseCatalog) ResponseCatalog {
	out := make(ResponseCatalog, len(types.Moods))
	for _, mood := range types.Moods {
		if list := in[mood]; len(list) > 0 {
			out[mood] = append([]string(nil), list...)
			continue
		}
		out[mood] = append([]string(nil), fallbackResponses[mood]...)
	}
	return out
}
