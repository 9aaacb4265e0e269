// Package migrate is the CLI helper for moving data between storage
// providers, with shared argument parsing, timeouts, and logging.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/domain"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/migration"
	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/observability/logger"
)

const defaultSubcommand = "copy"

// DefaultCollections is the collection set migrated when none are named.
var DefaultCollections = []string{
	domain.CollectionAccounts,
	domain.CollectionProgress,
	domain.CollectionMissions,
	domain.CollectionAnalytics,
}

// Options configures migration command behavior.
type Options struct {
	ServiceName string
	Timeout     time.Duration
	Logger      logger.Logger
}

// Run executes migrate subcommands using shared parsing, timeout and logging.
func Run(args []string, opts Options, m *migration.Migrator) error {
	subcommand, collections, err := ParseArgs(args)
	if err != nil {
		return err
	}
	return RunParsed(subcommand, collections, opts, m)
}

// RunParsed executes a parsed migration command.
func RunParsed(subcommand string, collections []string, opts Options, m *migration.Migrator) error {
	if err := validateOptions(opts); err != nil {
		return err
	}
	if m == nil {
		return errors.New("migrator is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	switch subcommand {
	case "copy":
		results, err := m.MigrateAll(ctx, collections)
		for _, res := range results {
			opts.Logger.Info("collection copied",
				"collection", res.Collection,
				"migrated", res.Migrated,
				"errors", len(res.Errors),
			)
			for _, recErr := range res.Errors {
				opts.Logger.Warn("document failed", "collection", res.Collection, "id", recErr.ID, "error", recErr.Error)
			}
		}
		return err
	case "validate":
		for _, collection := range collections {
			v, err := m.ValidateMigration(ctx, collection)
			if err != nil {
				return err
			}
			opts.Logger.Info("collection validated",
				"collection", v.Collection,
				"source", v.SourceCount,
				"target", v.TargetCount,
				"missing", len(v.MissingIDs),
				"valid", v.Valid,
			)
			if !v.Valid {
				return fmt.Errorf("validation failed for %s: %d missing documents", collection, len(v.MissingIDs))
			}
		}
		return nil
	default:
		return usageError(opts.ServiceName)
	}
}

// ParseArgs parses [copy|validate] [collections...], defaulting to copying
// the built-in domain collections.
func ParseArgs(args []string) (string, []string, error) {
	subcommand := defaultSubcommand
	if len(args) > 0 {
		subcommand = args[0]
	}

	collections := DefaultCollections
	if len(args) > 1 {
		collections = args[1:]
	}
	for _, c := range collections {
		if c == "" {
			return "", nil, errors.New("collection names must not be empty")
		}
	}

	return subcommand, collections, nil
}

func validateOptions(opts Options) error {
	if opts.Logger == nil {
		return errors.New("migration logger is required")
	}
	if opts.ServiceName == "" {
		return errors.New("migration service name is required")
	}
	return nil
}

func usageError(serviceName string) error {
	return fmt.Errorf("usage: %s migrate [copy|validate] [collections...]", serviceName)
}
