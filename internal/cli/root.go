// Package cli implements the contacts CLI commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/contacts/internal/cache"
	"github.com/rcliao/contacts/internal/config"
	"github.com/rcliao/contacts/internal/gateway"
	"github.com/rcliao/contacts/internal/store"
)

var (
	dbPath     string
	apiURL     string
	offline    bool
	verbose    bool
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Contact book with offline cache",
	Long: "A small contact book. Contacts live on a remote API; the last known list is " +
		"cached locally and used whenever the API is unreachable.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Cache path (default: $CONTACTS_CACHE_PATH or ~/.contacts/cache.db)")
	RootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Contacts API URL (default: $CONTACTS_API_URL or http://localhost:3001)")
	RootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Do not contact the API; use the cache only")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log API and cache fallbacks to stderr")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// session is one Store plus the resources backing it.
type session struct {
	store *store.Store
	cache *cache.SQLiteCache
	api   string
}

func (s *session) Close() error {
	return s.cache.Close()
}

// openSession builds a Store from config and flags. Flags win over env.
func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.CachePath = dbPath
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if offline {
		cfg.APIURL = ""
	}

	c, err := cache.Open(cfg.CachePath, cfg.CacheKey)
	if err != nil {
		return nil, err
	}

	logger := log.New(os.Stderr, "contacts: ", 0)
	if !verbose {
		logger.SetOutput(io.Discard)
	}

	gw := gateway.NewHTTP(cfg.APIURL, gateway.WithTimeout(cfg.Timeout()))
	return &session{
		store: store.New(gw, c, store.WithLogger(logger)),
		cache: c,
		api:   cfg.APIURL,
	}, nil
}

// loadSession opens a session and runs the initial Load. A load without any
// source is not fatal here; callers decide how to render it.
func loadSession(ctx context.Context) (*session, error) {
	s, err := openSession()
	if err != nil {
		return nil, err
	}
	if err := s.store.Load(ctx); err != nil && !errors.Is(err, store.ErrNoContacts) {
		s.Close()
		return nil, err
	}
	return s, nil
}

// requireContacts exits with the load error state when nothing could be loaded.
func requireContacts(s *session) {
	st := s.store.State()
	if st.LoadErr == nil {
		return
	}
	s.Close()
	fmt.Fprintf(os.Stderr, "error: %v (api %s is %s and the cache is empty)\n", st.LoadErr, displayAPI(s.api), st.Status)
	fmt.Fprintln(os.Stderr, "retry once the API is reachable")
	os.Exit(1)
}

func displayAPI(url string) string {
	if url == "" {
		return "<none>"
	}
	return url
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
