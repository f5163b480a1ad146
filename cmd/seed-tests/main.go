package main

import (
	"context"
	"fmt"

	"github.com/mocktestapp/mocktest-backend/internal/config"
	"github.com/mocktestapp/mocktest-backend/internal/database"
	"github.com/mocktestapp/mocktest-backend/internal/logger"
	"github.com/mocktestapp/mocktest-backend/internal/model"
	"github.com/mocktestapp/mocktest-backend/internal/repository"
)

// stockTests is the built-in catalog seeded once per deployment. Stock
// tests have no owner and are visible to every user.
var stockTests = []model.Test{
	{
		Title:    "SSC CGL Tier 1 - General Awareness",
		Category: "SSC",
		Questions: []model.Question{
			{
				Text:          `Who is known as the "Father of the Indian Constitution"?`,
				TextHindi:     `भारतीय संविधान के "जनक" के रूप में किसे जाना जाता है?`,
				Options:       []string{"Mahatma Gandhi", "Jawaharlal Nehru", "Dr. B.R. Ambedkar", "Sardar Vallabhbhai Patel"},
				OptionsHindi:  []string{"महात्मा गांधी", "जवाहरलाल नेहरू", "डॉ. बी.आर. अंबेडकर", "सरदार वल्लभभाई पटेल"},
				CorrectOption: 2,
			},
			{
				Text:          "Which planet is known as the Red Planet?",
				TextHindi:     "किस ग्रह को लाल ग्रह के रूप में जाना जाता है?",
				Options:       []string{"Earth", "Mars", "Jupiter", "Venus"},
				OptionsHindi:  []string{"पृथ्वी", "मंगल", "बृहस्पति", "शुक्र"},
				CorrectOption: 1,
			},
			{
				Text:          "What is the capital of Japan?",
				TextHindi:     "जापान की राजधानी क्या है?",
				Options:       []string{"Beijing", "Seoul", "Tokyo", "Bangkok"},
				OptionsHindi:  []string{"बीजिंग", "सियोल", "टोक्यो", "बैंकॉक"},
				CorrectOption: 2,
			},
		},
	},
	{
		Title:    "IBPS Clerk Prelims - Quantitative Aptitude",
		Category: "Banking",
		Questions: []model.Question{
			{
				Text:          "A man buys a cycle for Rs. 1400 and sells it at a loss of 15%. What is the selling price of the cycle?",
				Options:       []string{"Rs. 1190", "Rs. 1160", "Rs. 1202", "Rs. 1000"},
				CorrectOption: 0,
			},
			{
				Text:          "The sum of ages of 5 children born at the intervals of 3 years each is 50 years. What is the age of the youngest child?",
				Options:       []string{"4 years", "8 years", "10 years", "None of these"},
				CorrectOption: 0,
			},
		},
	},
	{
		Title:    "UPSC Prelims - Indian Polity",
		Category: "UPSC",
		Questions: []model.Question{
			{
				Text:          "The inspiration of 'Liberty, Equality and Fraternity' was derived from which revolution?",
				Options:       []string{"American Revolution", "French Revolution", "Russian Revolution", "Industrial Revolution"},
				CorrectOption: 1,
			},
			{
				Text:          `The Preamble of the Indian Constitution is based on the "Objectives Resolution" drafted and moved by:`,
				Options:       []string{"Dr. B.R. Ambedkar", "Jawaharlal Nehru", "Dr. Rajendra Prasad", "Sardar Vallabhbhai Patel"},
				CorrectOption: 1,
			},
		},
	},
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	testRepo := repository.NewTestRepository(pool)

	// Skip seeding when stock tests already exist.
	existing, err := pool.Query(ctx, `SELECT 1 FROM tests WHERE owner_id IS NULL LIMIT 1`)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check existing tests")
	}
	hasStock := existing.Next()
	existing.Close()
	if hasStock {
		fmt.Println("Stock tests already seeded, nothing to do")
		return
	}

	for i := range stockTests {
		t := &stockTests[i]
		if err := t.Validate(); err != nil {
			log.Fatal().Err(err).Str("title", t.Title).Msg("Stock test invalid")
		}
		if err := testRepo.Create(ctx, t); err != nil {
			log.Fatal().Err(err).Str("title", t.Title).Msg("Failed to seed test")
		}
		fmt.Printf("Seeded %q (%d questions)\n", t.Title, len(t.Questions))
	}

	fmt.Printf("Seeded %d stock tests\n", len(stockTests))
}
