package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/sirupsen/logrus"
)

var (
	grpcAddr = flag.String("grpc-addr", "localhost:50051", "gRPC health server address")
	httpAddr = flag.String("http-addr", "http://localhost:8080", "HTTP API base URL")
	textFile = flag.String("file", "", "Path to text file to translate")
	text     = flag.String("text", "", "Text to translate (if file not provided)")
	editor   = flag.Bool("editor", false, "Send the text as an editor selection")
)

type result struct {
	Provider  string `json:"provider"`
	Text      string `json:"text"`
	From      string `json:"from"`
	Phonetic  string `json:"phonetic"`
	TSpeakURL string `json:"tspeak_url"`
	Error     string `json:"error"`
}

type response struct {
	Query   string   `json:"query"`
	Results []result `json:"results"`
	Error   string   `json:"error"`
	Missing []string `json:"missing"`
}

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	// Read text to translate
	var selection string
	if *textFile != "" {
		data, err := os.ReadFile(*textFile)
		if err != nil {
			logger.WithError(err).Fatalf("Failed to read file: %s", *textFile)
		}
		selection = string(data)
	} else if *text != "" {
		selection = *text
	} else {
		logger.Fatal("Either -file or -text must be provided")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.WithFields(logrus.Fields{
		"server": *grpcAddr,
	}).Info("Checking notetrans health...")

	conn, err := grpc.DialContext(ctx, *grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to server")
	}
	defer conn.Close()

	hc, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		logger.WithError(err).Fatal("Health check failed")
	}
	logger.WithFields(logrus.Fields{
		"status": hc.Status.String(),
	}).Info("Health check completed")
	if hc.Status != grpc_health_v1.HealthCheckResponse_SERVING {
		logger.Warn("No translation provider enabled; the translate request will be rejected")
	}

	body, err := json.Marshal(map[string]interface{}{
		"selection": selection,
		"editor":    *editor,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to encode request")
	}

	logger.WithFields(logrus.Fields{
		"server":      *httpAddr,
		"text_length": len(selection),
	}).Info("Translating text...")
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(*httpAddr, "/")+"/api/v1/translate", bytes.NewReader(body))
	if err != nil {
		logger.WithError(err).Fatal("Failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.WithError(err).Fatal("Translation request failed")
	}
	defer resp.Body.Close()

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logger.WithError(err).Fatal("Failed to decode response")
	}
	if resp.StatusCode != http.StatusOK {
		logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"error":       out.Error,
			"missing":     out.Missing,
		}).Fatal("Translation was not successful")
	}

	separator := strings.Repeat("=", 80)
	dashLine := strings.Repeat("-", 80)

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("TRANSLATION RESULTS")
	fmt.Println(separator)
	fmt.Printf("\nQuery: %s\n", out.Query)
	for _, r := range out.Results {
		fmt.Println()
		fmt.Println(dashLine)
		fmt.Printf("%s\n", strings.ToUpper(r.Provider))
		fmt.Println(dashLine)
		if r.Error != "" {
			fmt.Printf("error: %s\n", r.Error)
			continue
		}
		fmt.Println(r.Text)
		if r.From != "" {
			fmt.Printf("detected source: %s\n", r.From)
		}
		if r.Phonetic != "" {
			fmt.Printf("phonetic: %s\n", r.Phonetic)
		}
		if r.TSpeakURL != "" {
			fmt.Printf("audio: %s\n", r.TSpeakURL)
		}
	}
	fmt.Println()
	fmt.Println(separator)

	logger.WithFields(logrus.Fields{
		"duration_seconds": time.Since(startTime).Seconds(),
		"providers":        len(out.Results),
	}).Info("Translation completed")
}
