package bootstrap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	appconfig "github.com/wolfman30/orbit-landing/internal/config"
	"github.com/wolfman30/orbit-landing/internal/intake"
	"github.com/wolfman30/orbit-landing/internal/waitlist"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

// WaitlistBackend bundles the write path, the admin read path, and whatever
// must be released on shutdown.
type WaitlistBackend struct {
	Kind   string
	Store  intake.Store
	Lister waitlist.Lister
	close  func() error
}

func (b *WaitlistBackend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// BuildWaitlistBackend selects the store named by cfg.StoreBackend. Postgres
// needs pool; DynamoDB needs awsCfg.
func BuildWaitlistBackend(cfg *appconfig.Config, pool *pgxpool.Pool, awsCfg *aws.Config, logger *logging.Logger) (*WaitlistBackend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	kind := cfg.StoreBackend()
	switch kind {
	case appconfig.StorePostgres:
		if pool == nil {
			return nil, fmt.Errorf("bootstrap: waitlist store %q needs DATABASE_URL", kind)
		}
		db := stdlib.OpenDBFromPool(pool)
		return &WaitlistBackend{
			Kind:   kind,
			Store:  waitlist.NewPostgresRepository(pool),
			Lister: waitlist.NewSQLLister(db),
			close:  db.Close,
		}, nil
	case appconfig.StoreDynamoDB:
		if awsCfg == nil {
			return nil, fmt.Errorf("bootstrap: waitlist store %q needs AWS config", kind)
		}
		repo := waitlist.NewDynamoRepository(dynamodb.NewFromConfig(*awsCfg), cfg.WaitlistTable, logger)
		return &WaitlistBackend{Kind: kind, Store: repo, Lister: repo}, nil
	case appconfig.StoreMemory:
		logger.Warn("waitlist using in-memory store; records are lost on restart")
		repo := waitlist.NewInMemoryRepository()
		return &WaitlistBackend{Kind: kind, Store: repo, Lister: repo}, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown waitlist store %q", kind)
	}
}
