package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aggieseek/seatwatch/api"
	"github.com/aggieseek/seatwatch/api/cache"
	"github.com/aggieseek/seatwatch/api/portal"
	"github.com/aggieseek/seatwatch/api/section"
	"github.com/aggieseek/seatwatch/api/snapshot"
	"github.com/aggieseek/seatwatch/config"
	"github.com/aggieseek/seatwatch/log"
	"github.com/aggieseek/seatwatch/mcp"
	"github.com/morikuni/failure/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	// Command line flags
	jsonFlag    bool
	timeoutFlag time.Duration
	fanoutFlag  int
	cacheFlag   = cacheBackendFlag{}

	cfg config.Config

	// Root command
	rootCmd = &cobra.Command{
		Use:           "seatwatch",
		Short:         "Track class sections and their seats",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `seatwatch looks up class sections on the registration portal.

It merges a section's general info with its restrictions, prerequisites,
meeting times and bookstore links, reads seat counts, and serves the same
data over HTTP or MCP.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			if cmd.Flags().Changed("timeout") {
				cfg.Portal.RequestTimeout = timeoutFlag
			}
			if cmd.Flags().Changed("fanout") {
				cfg.Portal.FanoutLimit = fanoutFlag
			}
			if cacheFlag.IsSet {
				cfg.ClassCache.Backend = config.CacheBackend(cacheFlag.Value)
			}
		},
	}

	// Version command
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("seatwatch version %s\n", api.VersionString())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print raw JSON")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 10*time.Second, "Timeout of each portal request")
	rootCmd.PersistentFlags().IntVar(&fanoutFlag, "fanout", 16, "Maximum concurrent portal requests per lookup")
	rootCmd.PersistentFlags().Var(&cacheFlag, "cache", "Class listing cache: memory, snapshot or redis")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcp.Command(func() (mcp.Service, error) {
		return newService()
	}))
}

// Run executes the main CLI functionality
func Run() error {
	return rootCmd.Execute()
}

// newService wires the portal client and the configured class cache
func newService() (*api.Service, error) {
	client := portal.NewClient(portal.Options{
		HowdyBaseURL:   cfg.Portal.HowdyBaseURL,
		CompassBaseURL: cfg.Portal.CompassBaseURL,
		Timeout:        cfg.Portal.RequestTimeout,
	})

	classes, err := newClassCache(cfg.ClassCache)
	if err != nil {
		return nil, err
	}
	resources, err := resolveResources(resourceFlags)
	if err != nil {
		return nil, err
	}

	return api.NewService(client, api.Options{
		FanoutLimit:      cfg.Portal.FanoutLimit,
		AggregateTimeout: cfg.Portal.AggregateTimeout,
		Resources:        resources,
		ClassCache:       classes,
	}), nil
}

// resolveResources maps --resource names onto the catalog. No names
// means the whole catalog.
func resolveResources(names []string) ([]section.Resource, error) {
	if len(names) == 0 {
		return nil, nil
	}
	names = lo.Uniq(lo.Map(names, func(name string, _ int) string {
		return strings.ToUpper(strings.TrimSpace(name))
	}))
	resources := make([]section.Resource, 0, len(names))
	for _, name := range names {
		r, ok := portal.Resource(name)
		if !ok {
			return nil, failure.New(InvalidArguments,
				failure.Message("Unknown resource"),
				failure.Context{"resource": name},
			)
		}
		resources = append(resources, r)
	}
	return resources, nil
}

func newClassCache(c config.ClassCacheConfig) (api.ClassCache, error) {
	switch c.Backend {
	case config.CacheBackendMemory, "":
		return api.NewMemoClassCache(cache.NewMemoryStore[[]section.Class](), c.TTL), nil
	case config.CacheBackendSnapshot:
		dir, err := filepath.Abs(c.SnapshotDir)
		if err != nil {
			return nil, failure.Wrap(err)
		}
		log.Debug("Using snapshot class cache", "dir", dir, "window", c.SnapshotWindow)
		return api.NewSnapshotClassCache(snapshot.NewDirStorage(dir), c.SnapshotWindow), nil
	case config.CacheBackendRedis:
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, failure.Wrap(err, failure.WithCode(InvalidArguments),
				failure.Message("Invalid REDIS_URL"))
		}
		store := cache.NewRedisStore[[]section.Class](redis.NewClient(opts), "seatwatch:")
		return api.NewMemoClassCache(store, c.TTL), nil
	default:
		return nil, failure.New(InvalidArguments,
			failure.Message("Unknown class cache backend"),
			failure.Context{"backend": string(c.Backend)},
		)
	}
}
