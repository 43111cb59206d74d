// Command mock_backend serves a generated collection of fake advertisement
// records and accepts report submissions, standing in for the real backend
// during local development and demos.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scamwatch/scamwatch/internal/observability"
)

var (
	recordCount = flag.Int("records", 200, "number of fake records to generate")
	seed        = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	port        = flag.String("port", "9000", "listen port")
	failRate    = flag.Float64("fail-rate", 0, "fraction of report submissions to reject (0-1)")
)

var pageNames = []string{
	"Crypto Doubler", "Miracle Weight Loss", "Plant Paradise", "Quick Cash Loans",
	"Designer Outlet 90% Off", "Local Bakery", "Celebrity Giveaway", "Home Fitness Gear",
	"Investment Gurus", "Pet Supplies Direct", "Free iPhone Raffle", "Garden Tools Co",
}

var scamTypes = []string{
	"investment fraud", "fake shop", "advance fee", "phishing", "counterfeit goods", "giveaway scam",
}

var threatLevels = []string{"high", "medium", "low", "", "unknown"}

func fakeRecord(r *rand.Rand) map[string]interface{} {
	isScam := r.Float64() < 0.6
	rec := map[string]interface{}{
		"id":              uuid.NewString(),
		"page_name":       pageNames[r.Intn(len(pageNames))],
		"is_scam":         isScam,
		"is_active":       r.Float64() < 0.8,
		"page_like_count": r.Intn(50000),
		"report_count":    r.Intn(40),
		"reported":        0,
		"ad_text":         "Limited offer, act now!",
		"threat_level":    "",
	}
	if isScam {
		rec["threat_level"] = threatLevels[r.Intn(len(threatLevels))]
		rec["scam_type"] = scamTypes[r.Intn(len(scamTypes))]
		rec["red_flags"] = []string{"urgency pressure", "unverifiable claims"}
		rec["recommendations"] = []string{"do not engage", "report the page"}
	}
	// roughly one in ten records has no scrape date
	if r.Float64() < 0.9 {
		scraped := time.Now().UTC().AddDate(0, 0, -r.Intn(60))
		rec["date_scraped"] = scraped.Format("2006-01-02 15:04:05")
	}
	return rec
}

func main() {
	flag.Parse()

	logger, err := observability.InitLogger("mock-backend")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	r := rand.New(rand.NewSource(*seed))
	records := make([]map[string]interface{}, *recordCount)
	for i := range records {
		records[i] = fakeRecord(r)
	}
	logger.Info("generated fake records", zap.Int("count", len(records)), zap.Int64("seed", *seed))

	var mu sync.Mutex

	http.HandleFunc("/api/ads", func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": records}); err != nil {
			logger.Error("encode records", zap.Error(err))
		}
	})

	http.HandleFunc("/api/report", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.ID == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if r.Float64() < *failRate {
			logger.Warn("simulating intake rejection", zap.String("id", body.ID))
			http.Error(w, "intake rejected", http.StatusServiceUnavailable)
			return
		}

		mu.Lock()
		for _, rec := range records {
			if rec["id"] == body.ID {
				rec["reported"] = 1
				break
			}
		}
		mu.Unlock()

		logger.Info("report accepted", zap.String("id", body.ID))
		w.WriteHeader(http.StatusOK)
	})

	addr := ":" + *port
	logger.Info("mock backend running", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal("listen", zap.Error(err))
	}
}
