// Package e2e provides end-to-end tests over a synthetic browsing history and a set of queries.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/rekishi/internal/models"
)

// QueryTestCase defines a query and the record id(s) that must appear in its results.
type QueryTestCase struct {
	Query       string
	ExpectedIDs []string
	Description string
}

// Corpus holds history records and query test cases.
type Corpus struct {
	Records   []models.Record
	TestCases []QueryTestCase
}

type visit struct {
	title  string
	host   string
	path   string
	phrase string
}

var visits = []visit{
	{"Effective Go", "go.dev", "/doc/effective_go", "effective go"},
	{"Kubernetes Pods overview", "kubernetes.io", "/docs/concepts/workloads/pods", "kubernetes pods"},
	{"React useEffect hook reference", "react.dev", "/reference/react/useEffect", "react useeffect"},
	{"PostgreSQL window functions tutorial", "www.postgresql.org", "/docs/current/tutorial-window.html", "postgresql window"},
	{"Dockerfile best practices", "docs.docker.com", "/develop/dockerfile-best-practices", "dockerfile practices"},
	{"Sourdough bread starter guide", "www.kingarthurbaking.com", "/recipes/sourdough-starter", "sourdough starter"},
	{"Marathon training plan for beginners", "www.runnersworld.com", "/training/marathon-plan", "marathon training"},
	{"Tokyo weather forecast", "weather.example.com", "/tokyo", "tokyo weather"},
	{"Cheap flights to Lisbon", "flights.example.com", "/search/lisbon", "lisbon flights"},
	{"Mortgage calculator", "bank.example.com", "/tools/mortgage-calculator", "mortgage calculator"},
	{"Rust ownership and borrowing", "doc.rust-lang.org", "/book/ch04-01-what-is-ownership.html", "rust ownership"},
	{"Python asyncio documentation", "docs.python.org", "/3/library/asyncio.html", "python asyncio"},
	{"Terraform AWS provider", "registry.terraform.io", "/providers/hashicorp/aws", "terraform provider"},
	{"Prometheus alerting rules", "prometheus.io", "/docs/practices/alerting", "prometheus alerting"},
	{"Redis sorted sets commands", "redis.io", "/docs/data-types/sorted-sets", "redis sorted"},
	{"Houseplant watering schedule", "plants.example.com", "/care/watering", "houseplant watering"},
	{"Chess openings for beginners", "www.chess.com", "/openings/beginners", "chess openings"},
	{"Guitar chord chart", "music.example.com", "/guitar/chords", "guitar chord"},
	{"Vegan lasagna recipe", "recipes.example.com", "/vegan-lasagna", "vegan lasagna"},
	{"Bicycle tire pressure guide", "cycling.example.com", "/tire-pressure", "bicycle tire"},
	{"Kafka consumer groups explained", "kafka.apache.org", "/documentation/consumer-groups", "kafka consumer"},
	{"gRPC status codes", "grpc.io", "/docs/guides/status-codes", "grpc status"},
	{"OAuth device authorization flow", "oauth.net", "/2/device-flow", "oauth device"},
	{"Nginx reverse proxy configuration", "nginx.org", "/en/docs/http/ngx_http_proxy_module.html", "nginx proxy"},
	{"SQLite full text search extension", "www.sqlite.org", "/fts5.html", "sqlite fts5"},
	{"Linux cron job syntax", "crontab.example.com", "/syntax", "cron syntax"},
	{"Electric car charging stations map", "ev.example.com", "/map", "charging stations"},
	{"Volcano eruption live tracker", "volcano.example.com", "/live", "volcano eruption"},
	{"Museum opening hours Amsterdam", "museum.example.com", "/amsterdam/hours", "museum amsterdam"},
	{"Apartment rental listings Berlin", "rent.example.com", "/berlin", "apartment berlin"},
}

var transitions = []string{"link", "typed", "auto_bookmark", "reload", "generated"}

// BuildCorpus returns one record per visit, with rotating dates, counts and
// transitions, and a query case per distinctive phrase.
func BuildCorpus() *Corpus {
	c := &Corpus{Records: make([]models.Record, 0, len(visits))}
	for i, v := range visits {
		id := fmt.Sprintf("%d", 1000+i)
		c.Records = append(c.Records, models.Record{
			ID:         id,
			Title:      v.title,
			URL:        "https://" + v.host + v.path,
			Date:       fmt.Sprintf("%02d/%02d/2024", i%12+1, i%28+1),
			Time:       fmt.Sprintf("%02d:%02d:00", i%24, (i*7)%60),
			VisitCount: i%9 + 1,
			TypedCount: i % 3,
			Transition: transitions[i%len(transitions)],
		})
		c.TestCases = append(c.TestCases, QueryTestCase{
			Query:       v.phrase,
			ExpectedIDs: []string{id},
			Description: fmt.Sprintf("query %q should return record %s", v.phrase, id),
		})
	}
	return c
}

// ByID returns the record with the given id.
func (c *Corpus) ByID(id string) (models.Record, bool) {
	for _, r := range c.Records {
		if r.ID == id {
			return r, true
		}
	}
	return models.Record{}, false
}

// Hosted returns the ids of records whose URL contains host.
func (c *Corpus) Hosted(host string) []string {
	var ids []string
	for _, r := range c.Records {
		if strings.Contains(r.URL, host) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
