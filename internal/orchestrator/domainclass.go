package orchestrator

import (
	"strings"

	"github.com/mikiiiss/research-assistant/internal/domain"
)

// classifiedDomains is the tie-break order: earlier wins on equal score.
var classifiedDomains = []domain.ResearchDomain{
	domain.DomainMedical,
	domain.DomainTech,
	domain.DomainPhysics,
}

var domainKeywords = map[domain.ResearchDomain][]string{
	domain.DomainMedical: {
		"cancer", "disease", "treatment", "clinical", "drug", "patient",
		"therapy", "medical", "medicine", "hospital", "diagnosis", "symptom",
		"health", "pharmaceutical", "vaccine", "virus", "bacteria", "infection",
		"surgery", "gene", "protein", "dna", "rna", "biology", "biomedical",
	},
	domain.DomainTech: {
		"neural", "algorithm", "machine learning", "ai", "artificial intelligence",
		"software", "deep learning", "computer", "programming", "data",
		"network", "system", "model", "training", "optimization", "transformer",
		"cnn", "rnn", "nlp", "computer vision", "reinforcement learning",
		"classification", "regression", "clustering", "prediction",
	},
	domain.DomainPhysics: {
		"quantum", "particle", "cosmology", "physics", "relativity",
		"gravity", "magnetism", "thermodynamics", "mechanics", "optics",
		"atomic", "nuclear", "photon", "electron", "energy", "field theory",
	},
}

var venuePatterns = map[domain.ResearchDomain][]string{
	domain.DomainMedical: {"medical", "clinical", "medicine", "health", "jama", "nejm", "lancet", "bmj"},
	domain.DomainTech:    {"neurips", "icml", "iclr", "cvpr", "acl", "emnlp", "aaai", "ijcai", "ieee", "acm"},
	domain.DomainPhysics: {"physical review", "physics", "astrophysics", "quantum"},
}

// DomainClassifier assigns a research domain to a query using keyword
// lexicons, refined by the venues of any locally matched papers. Pure.
type DomainClassifier struct{}

func NewDomainClassifier() *DomainClassifier {
	return &DomainClassifier{}
}

// Classify scores the query against each lexicon (multi-word keywords weigh
// their word count) and, when local papers are present, blends in a venue
// score at 70/30. Zero everywhere means general.
func (c *DomainClassifier) Classify(query string, localPapers []domain.Paper) domain.DomainVerdict {
	queryLower := strings.ToLower(query)

	scores := make(map[domain.ResearchDomain]float64, len(classifiedDomains))
	for _, d := range classifiedDomains {
		var score float64
		for _, kw := range domainKeywords[d] {
			if strings.Contains(queryLower, kw) {
				score += float64(len(strings.Fields(kw)))
			}
		}
		scores[d] = score
	}

	if len(localPapers) > 0 {
		venueScores := classifyByVenues(localPapers)
		for _, d := range classifiedDomains {
			scores[d] = 0.7*scores[d] + 0.3*venueScores[d]
		}
	}

	best := domain.DomainGeneral
	var bestScore float64
	for _, d := range classifiedDomains {
		if scores[d] > bestScore {
			best = d
			bestScore = scores[d]
		}
	}

	return domain.DomainVerdict{Domain: best, Scores: scores}
}

// classifyByVenues counts one point per paper whose venue matches a domain
// pattern. A paper contributes at most once per domain.
func classifyByVenues(papers []domain.Paper) map[domain.ResearchDomain]float64 {
	venueScores := make(map[domain.ResearchDomain]float64, len(classifiedDomains))
	for _, p := range papers {
		if p.Venue == "" {
			continue
		}
		venueLower := strings.ToLower(p.Venue)
		for _, d := range classifiedDomains {
			for _, pattern := range venuePatterns[d] {
				if strings.Contains(venueLower, pattern) {
					venueScores[d]++
					break
				}
			}
		}
	}
	return venueScores
}
