// kbseed loads a starter knowledge base into the configured store.
// Run with DATABASE_URL set; without it the seed goes to an in-memory store
// and is only useful as a dry run.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/kenmarkitan/concierge/internal/config"
	"github.com/kenmarkitan/concierge/internal/store"
)

func seedEntries(company, website string) []store.Entry {
	meta := map[string]string{"source": "seed", "seededAt": time.Now().UTC().Format(time.RFC3339)}
	return []store.Entry{
		{
			Category: "About",
			Question: fmt.Sprintf("What is %s?", company),
			Answer:   fmt.Sprintf("%s is a technology company focused on delivering cutting-edge AI solutions, consulting services, and comprehensive training programs. We help businesses transform their operations through innovative technology.", company),
			Metadata: meta,
		},
		{
			Category: "About",
			Question: "What is your mission?",
			Answer:   "Our mission is to empower organizations with intelligent solutions that drive growth and efficiency. We strive to be a trusted technology partner for businesses seeking digital transformation.",
			Metadata: meta,
		},
		{
			Category: "Services",
			Question: "What services do you offer?",
			Answer:   "We offer three main services: 1) AI Solutions - Custom AI implementations tailored to your business needs, 2) Consulting - Expert technology consulting to guide your digital transformation, and 3) Training - Comprehensive training programs to upskill your team.",
			Metadata: meta,
		},
		{
			Category: "Services",
			Question: "Do you provide AI consulting?",
			Answer:   "Yes, we provide expert AI consulting services. Our team helps businesses identify opportunities for AI implementation, develop strategies, and execute AI projects that deliver real business value.",
			Metadata: meta,
		},
		{
			Category: "Services",
			Question: "What kind of training programs do you offer?",
			Answer:   "We offer comprehensive training programs covering AI fundamentals, machine learning, data science, cloud technologies, and software development. Our training is designed to upskill teams and prepare them for the future of technology.",
			Metadata: meta,
		},
		{
			Category: "FAQ",
			Question: "How can I contact you?",
			Answer:   fmt.Sprintf("You can contact us by visiting our website at %s. We have a contact form and contact information available there. We would be happy to assist you with your inquiries.", website),
			Metadata: meta,
		},
		{
			Category: "FAQ",
			Question: "Do you work with small businesses?",
			Answer:   "Yes, we work with businesses of all sizes, from startups to large enterprises. Our solutions are scalable and can be tailored to meet the specific needs and budget of small businesses.",
			Metadata: meta,
		},
		{
			Category: "FAQ",
			Question: "What industries do you serve?",
			Answer:   "We serve a wide range of industries including healthcare, finance, retail, manufacturing, education, and technology. Our AI solutions and consulting services are adaptable to various industry requirements.",
			Metadata: meta,
		},
	}
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL not set; seeding an in-memory store (dry run)")
	}

	ctx := context.Background()
	st, err := store.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer st.Close()

	count, err := st.InsertEntries(ctx, seedEntries(cfg.CompanyName, cfg.WebsiteURL))
	if err != nil {
		log.Fatalf("seed failed after %d entries: %v", count, err)
	}
	log.Printf("seeded %d knowledge entries", count)
}
