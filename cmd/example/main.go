package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"

	donations "github.com/goliatone/go-donation-pages"
	"github.com/goliatone/go-donation-pages/internal/di"
	"github.com/goliatone/go-donation-pages/internal/domain"
	"github.com/goliatone/go-donation-pages/internal/editor"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/payments"
	"github.com/goliatone/go-donation-pages/internal/styles"
	"github.com/goliatone/go-donation-pages/internal/templates"
)

//go:embed templates/*.md
var templateFiles embed.FS

// printProcessor stands in for a real payment processor and logs the
// confirmation it would send.
type printProcessor struct{}

func (printProcessor) ConfirmPayment(_ context.Context, params payments.ConfirmParams) error {
	log.Printf("confirm payment for %s, return to %s", params.BillingDetails.Name, params.ReturnURL)
	return nil
}

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	serve := flag.Bool("serve", false, "serve the page API after the demo")
	flag.Parse()

	if err := run(context.Background(), *configPath, *serve); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, configPath string, serve bool) error {
	cfg := donations.DefaultConfig()
	if configPath != "" {
		loaded, err := donations.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.Features.HTTPAPI = true

	templateFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return err
	}

	module, err := donations.New(cfg,
		di.WithTemplates(templateFS, templates.LoaderConfig{}),
		di.WithPaymentProcessor(printProcessor{}),
	)
	if err != nil {
		return err
	}
	defer module.Close()

	program := pages.RevenueProgram{ID: 1, Name: "Daily Planet", Slug: "daily-planet", NonProfit: true}
	seeded, err := module.Container().SeedTemplates(ctx, program, pages.PaymentProvider{})
	if err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	page, err := module.Pages().GetBySlug(ctx, "spring-drive")
	if err != nil {
		return err
	}
	log.Printf("seeded %d page(s); editing %s", len(seeded), page.Slug)

	session := module.Edit(*page)
	session.SetChange(pages.Update{
		Heading: pages.Set("Keep the presses running"),
		Styles:  pages.Set(styles.Style{Styles: map[string]any{"colors": map[string]any{"primary": "#0b3d91"}}}),
	})
	saved, err := module.Save(ctx, session, donations.SaveOptions{})
	if err != nil {
		failure := editor.Classify(err)
		return fmt.Errorf("save failed (%s): %w", failure.Kind, err)
	}
	printJSON(saved)

	fee, ok := module.Fees().Calculate(25, domain.IntervalMonthly, program.NonProfit)
	if ok {
		log.Printf("fee to cover on $25 monthly: %.2f", fee)
	}

	checkout, err := module.Checkout()
	if err != nil {
		return err
	}
	successURL, err := checkout.Confirm(ctx, payments.ConfirmRequest{
		ClientSecret:     "pi_demo_secret",
		Amount:           "25.00",
		Interval:         domain.IntervalMonthly,
		ContributorName:  "Lois Lane",
		ContributorEmail: "lois@example.com",
		PageSlug:         saved.Slug,
		RPSlug:           program.Slug,
		ThankYouRedirect: "https://dailyplanet.example/thanks",
		PathName:         "/" + saved.Slug,
	})
	if err != nil {
		return err
	}
	log.Printf("payment success url: %s", successURL)

	if !serve {
		return nil
	}
	handler, err := module.Handler()
	if err != nil {
		return err
	}
	log.Printf("serving page api on %s", cfg.API.Listen)
	if err := http.ListenAndServe(cfg.API.Listen, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func printJSON(value any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(value)
}
