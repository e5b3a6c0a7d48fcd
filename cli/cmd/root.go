package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitdex/bitdex/bitvec"
	"github.com/bitdex/bitdex/element"
	"github.com/bitdex/bitdex/keys"
	"github.com/bitdex/bitdex/ql"
	"github.com/bitdex/bitdex/query"
	"github.com/bitdex/bitdex/registry"
	"github.com/bitdex/bitdex/store"
	"github.com/bitdex/bitdex/util/log"
)

/*
Exit status taxonomy:

	0 success
	1 usage or validation error
	2 connection failure
	3 store operation failure
	4 not found
*/

////////////////////////////////////////////////////////////////////////////////

const (
	exitUsage    = 1
	exitConnect  = 2
	exitStore    = 3
	exitNotFound = 4
)

var (
	redisAddr string
	timeoutMS int
	keyPrefix string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "bitdex",
	Short: "bitdex maintains a Redis-backed inverted index over 4096-bit flag vectors",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(exitUsage)
	}
}

func bailf(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}

// checkErr exits with the taxonomy code for err, or returns when err is nil.
func checkErr(err error) {
	if err == nil {
		return
	}
	bailf(exitCode(err), "error: %v", err)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return exitNotFound
	case errors.Is(err, bitvec.ErrBitRange),
		errors.Is(err, bitvec.ErrBlobLength),
		errors.Is(err, bitvec.ErrHexDigit),
		errors.Is(err, element.ErrNameTooLong),
		errors.Is(err, query.ErrOperands),
		errors.Is(err, query.ErrTTL),
		errors.Is(err, ql.ErrSyntax):
		return exitUsage
	}
	switch store.KindOf(err) {
	case store.KindIO:
		return exitConnect
	case store.KindNotFound:
		return exitNotFound
	default:
		return exitStore
	}
}

// dial opens and liveness-checks the store connection. Callers own the
// returned connection and must Close it.
func dial() *store.Redis {
	conn, err := store.NewRedis(store.RedisOptions{
		Addr:    redisAddr,
		Timeout: time.Duration(timeoutMS) * time.Millisecond,
	})
	if err != nil {
		bailf(exitUsage, "error: %v", err)
	}
	if err := conn.Ping(rootCmd.Context()); err != nil {
		bailf(exitConnect, "error: cannot reach store at %s: %v", redisAddr, err)
	}
	return conn
}

func newRegistry() (*registry.Registry, func()) {
	conn := dial()
	return registry.New(conn, keys.New(keyPrefix)), func() { _ = conn.Close() }
}

func newEngine() (*query.Engine, func()) {
	conn := dial()
	return query.NewEngine(conn, keys.New(keyPrefix)), func() { _ = conn.Close() }
}

func parseBits(args []string) ([]int, error) {
	bits := make([]int, len(args))
	for i, arg := range args {
		bit, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("bit %q is not an integer", arg)
		}
		bits[i] = bit
	}
	return bits, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func init() {
	cobra.OnInitialize(func() {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		log.Configure(level)
	})
	rootCmd.PersistentFlags().StringVarP(&redisAddr, "addr", "", envOr("BITDEX_REDIS_ADDR", "localhost:6379"), "store address")
	rootCmd.PersistentFlags().IntVarP(&timeoutMS, "timeout-ms", "", envOrInt("BITDEX_REDIS_TIMEOUT_MS", 2000), "store connect/request timeout in milliseconds")
	rootCmd.PersistentFlags().StringVarP(&keyPrefix, "prefix", "", envOr("BITDEX_PREFIX", keys.DefaultPrefix), "key prefix")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
