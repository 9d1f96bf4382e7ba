// Command backend_check verifies that a backend session can serve every call
// the portal depends on, using the same client and decoders the portal uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/sma-student-portal/internal/models"
	"github.com/noah-isme/sma-student-portal/internal/repository"
	"github.com/noah-isme/sma-student-portal/pkg/config"
)

type probe struct {
	Name     string
	Path     string
	Critical bool
	decode   func() interface{}
	describe func(v interface{}) string
}

type result struct {
	Probe    probe
	Duration time.Duration
	Summary  string
	Error    error
}

var probes = []probe{
	{
		Name:     "session",
		Path:     "/api/user/me",
		Critical: true,
		decode:   func() interface{} { return new(*models.User) },
		describe: func(v interface{}) string {
			user := *(v.(**models.User))
			if user == nil {
				return "no user in session"
			}
			return "signed in as " + user.DisplayName()
		},
	},
	{
		Name:     "students",
		Path:     "/api/getstudentdetails",
		Critical: true,
		decode:   func() interface{} { return new([]models.Student) },
		describe: func(v interface{}) string {
			students := *(v.(*[]models.Student))
			return fmt.Sprintf("%d students decoded", len(students))
		},
	},
	{
		Name:   "domains",
		Path:   "/api/domains",
		decode: func() interface{} { return new([]models.Domain) },
		describe: func(v interface{}) string {
			domains := *(v.(*[]models.Domain))
			labels := make([]string, 0, len(domains))
			for _, d := range domains {
				labels = append(labels, models.DomainLabel(models.DomainRefObject(d)))
			}
			return fmt.Sprintf("%d domains: %s", len(domains), strings.Join(labels, ", "))
		},
	},
}

func main() {
	var (
		baseURL    string
		cookieName string
		session    string
		timeout    time.Duration
	)

	flag.StringVar(&baseURL, "backend", "http://localhost:8080", "Backend base URL")
	flag.StringVar(&cookieName, "cookie", "JSESSIONID", "Session cookie name")
	flag.StringVar(&session, "session", os.Getenv("PORTAL_CHECK_SESSION"), "Session cookie value (defaults to $PORTAL_CHECK_SESSION)")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "Per-call timeout")
	flag.Parse()

	if session == "" {
		log.Fatal("a session cookie value is required (-session or PORTAL_CHECK_SESSION)")
	}

	client := repository.NewBackendClient(config.BackendConfig{BaseURL: baseURL, Timeout: timeout}, nil, nil)
	credentials := []*http.Cookie{{Name: cookieName, Value: session}}

	var (
		results  []result
		breaking int
	)
	for _, p := range probes {
		res := run(client, credentials, p)
		if res.Error != nil && p.Critical {
			breaking++
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Critical failures: %d\n", breaking)
	if breaking > 0 {
		os.Exit(1)
	}
}

func run(client *repository.BackendClient, credentials []*http.Cookie, p probe) result {
	res := result{Probe: p}
	dest := p.decode()

	start := time.Now()
	_, err := client.Do(context.Background(), credentials, repository.BackendRequest{Method: http.MethodGet, Path: p.Path}, dest)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err
		return res
	}
	res.Summary = p.describe(dest)
	return res
}

func printReport(results []result) {
	fmt.Println("Backend Check Report")
	fmt.Println("====================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		}
		fmt.Printf("[%s] %s GET %s (%s)\n", status, res.Probe.Name, res.Probe.Path, res.Duration.Round(time.Millisecond))
		if res.Error != nil {
			fmt.Printf("  Error: %v | Critical: %t\n", res.Error, res.Probe.Critical)
		} else {
			fmt.Printf("  %s\n", res.Summary)
		}
	}
}
