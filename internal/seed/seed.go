// Package seed provides helpers to create demo data for development and
// testing. It is never wired into production startup.
package seed

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"folio/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers          int
	PortfoliosPerUser int
	ProjectsPerFolio  int
	ShouldClean       bool
}

// DefaultOptions returns a small but representative data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:          5,
		PortfoliosPerUser: 2,
		ProjectsPerFolio:  3,
	}
}

// Run populates the database with demo users, portfolios, projects, media,
// share links and a spread of analytics events.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return fmt.Errorf("cleaning tables: %w", err)
		}
	}

	// every demo account shares one password to keep local logins easy
	hashed, err := bcrypt.GenerateFromPassword([]byte("Demo1234!pass"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for i := 0; i < opts.NumUsers; i++ {
		user := &models.User{
			Username:    fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:       fmt.Sprintf("demo%d@%s", i, gofakeit.DomainName()),
			Password:    string(hashed),
			DisplayName: gofakeit.Name(),
			Bio:         gofakeit.Sentence(8),
			Avatar:      fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("seeding user %d: %w", i, err)
		}

		for j := 0; j < opts.PortfoliosPerUser; j++ {
			if err := seedPortfolio(db, user, opts); err != nil {
				return err
			}
		}
	}

	log.Printf("seeded %d users with demo portfolios", opts.NumUsers)
	return nil
}

func seedPortfolio(db *gorm.DB, user *models.User, opts Options) error {
	portfolio := &models.Portfolio{
		UserID:      user.ID,
		Title:       gofakeit.JobTitle() + " Portfolio",
		Description: gofakeit.Paragraph(1, 2, 8, "\n"),
		IsPublic:    gofakeit.Bool(),
	}
	if err := db.Create(portfolio).Error; err != nil {
		return fmt.Errorf("seeding portfolio: %w", err)
	}

	for k := 0; k < opts.ProjectsPerFolio; k++ {
		project := &models.Project{
			PortfolioID: portfolio.ID,
			Title:       gofakeit.AppName(),
			Description: gofakeit.Sentence(12),
			Position:    k,
		}
		if err := db.Create(project).Error; err != nil {
			return fmt.Errorf("seeding project: %w", err)
		}

		media := &models.Media{
			ProjectID: &project.ID,
			URL:       fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
			MimeType:  "image/jpeg",
			Caption:   gofakeit.Sentence(5),
			Position:  0,
		}
		if err := db.Create(media).Error; err != nil {
			return fmt.Errorf("seeding media: %w", err)
		}
	}

	// roughly half the portfolios get an active share link with traffic
	if gofakeit.Bool() {
		token, err := demoToken()
		if err != nil {
			return err
		}
		link := &models.ShareLink{
			PortfolioID: portfolio.ID,
			Token:       token,
		}
		if err := db.Create(link).Error; err != nil {
			return fmt.Errorf("seeding share link: %w", err)
		}
		if err := db.Model(portfolio).
			Where("share_token IS NULL").
			Update("share_token", token).Error; err != nil {
			return fmt.Errorf("backfilling seed token: %w", err)
		}

		views := gofakeit.Number(1, 20)
		for v := 0; v < views; v++ {
			event := &models.AnalyticsEvent{
				PortfolioID: portfolio.ID,
				EventType:   models.EventTypeView,
				Payload:     `{"source":"share_link"}`,
				UserAgent:   gofakeit.UserAgent(),
				IP:          gofakeit.IPv4Address(),
				DeviceClass: gofakeit.RandomString([]string{"desktop", "mobile", "tablet"}),
			}
			if err := db.Create(event).Error; err != nil {
				return fmt.Errorf("seeding analytics event: %w", err)
			}
		}
	}

	return nil
}

func demoToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func clean(db *gorm.DB) error {
	// child tables first so foreign keys stay satisfied on databases that
	// enforce them without cascades
	for _, table := range []string{
		"analytics_events", "share_links", "media", "projects", "portfolios", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
