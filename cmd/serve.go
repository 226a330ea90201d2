package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ladder-sim/ladder-sim/sim"
)

var (
	serveFlags   Config
	serveAddr    string
	serveTimeout time.Duration
)

// serveCmd exposes batch runs over HTTP for interactive front ends
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve batch results over HTTP (POST /bias)",
	Run: func(cmd *cobra.Command, args []string) {
		base, err := resolveConfig(configPath, serveFlags, cmd.Flags().Changed)
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}
		if _, err := base.SimConfig(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := serve(cmd.Context(), serveAddr, newMux(base, serveTimeout)); err != nil {
			logrus.Fatalf("Server failed: %v", err)
		}
	},
}

// newMux wires the HTTP routes. Every /bias request runs its own batch
// built from base with the requested favors and bias.
func newMux(base Config, timeout time.Duration) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/bias", &biasHandler{base: base, timeout: timeout})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

type biasHandler struct {
	base    Config
	timeout time.Duration
}

func (h *biasHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg, err := h.requestConfig(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	log := logrus.WithFields(logrus.Fields{"favors": cfg.Favors, "bias": cfg.PromotionBias})
	c, err := newController(cfg, log)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if err := c.RunSimulations(ctx); err != nil {
		log.Warnf("batch aborted: %v", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	agg, err := c.FetchResults()
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(agg); err != nil {
		log.Warnf("writing response: %v", err)
	}
}

// requestConfig reads the bias and gender form fields over the base config.
// Requests reuse the base seed, so identical requests return identical results.
func (h *biasHandler) requestConfig(r *http.Request) (Config, error) {
	if err := r.ParseForm(); err != nil {
		return Config{}, fmt.Errorf("parsing form: %w", err)
	}
	rawBias := strings.TrimSpace(r.PostForm.Get("bias"))
	if rawBias == "" {
		return Config{}, errors.New("missing form field \"bias\"")
	}
	bias, err := strconv.Atoi(rawBias)
	if err != nil {
		return Config{}, fmt.Errorf("bias must be an integer, got %q", rawBias)
	}
	favors, err := sim.ParseGender(r.PostForm.Get("gender"))
	if err != nil {
		return Config{}, err
	}

	cfg := h.base
	cfg.Capacities = append([]int(nil), h.base.Capacities...)
	cfg.Favors = string(favors)
	cfg.PromotionBias = bias
	return cfg, nil
}

// statusFor maps batch errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sim.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logrus.Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}

func init() {
	addSimFlags(serveCmd.Flags(), &serveFlags)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().DurationVar(&serveTimeout, "request-timeout", 2*time.Minute, "Maximum time for one batch (0 = no limit)")
	rootCmd.AddCommand(serveCmd)
}
