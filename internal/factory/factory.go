package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"backoffice-service/internal/client"
	"backoffice-service/internal/config"
	"backoffice-service/internal/handler"
	"backoffice-service/internal/hashing"
	"backoffice-service/internal/identity"
	"backoffice-service/internal/mail"
	"backoffice-service/internal/obs"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/repository/kv"
	"backoffice-service/internal/service"
	"backoffice-service/internal/tlsutil"
	"backoffice-service/internal/util"
)

// Factory manages the lifecycle of all application dependencies
type Factory struct {
	config     *config.Config
	tlsManager *tlsutil.Manager
	metrics    *obs.Metrics

	// Clients
	redisClient      *client.RedisClient
	kafkaProducer    *client.KafkaProducer
	clickhouseClient *client.ClickHouseClient

	// Identity and delivery
	hasher   *hashing.Hasher
	provider *identity.LocalProvider
	sender   mail.Sender

	// Services
	gate         *service.AuthorizationGate
	accounts     *service.AccountService
	otp          *service.OtpFlow
	activity     *service.ActivityLog
	deposits     *service.DepositService
	bankDeposits *service.BankDepositService
	roles        *service.RoleService
	banks        *service.BankService
	dashboard    *service.DashboardService

	closeOnce sync.Once
	closed    chan struct{}
}

// NewFactory creates and initializes all application dependencies
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	f := &Factory{
		config:  cfg,
		metrics: obs.NewMetrics(),
		closed:  make(chan struct{}),
	}

	if cfg.Server.EnableTLS {
		f.tlsManager = tlsutil.NewManager(cfg.Server)
	}

	if err := f.initializeClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}
	f.initializeServices()

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.Bool("tls_enabled", cfg.Server.EnableTLS),
		util.Bool("kafka_enabled", cfg.Kafka.Enabled),
		util.Bool("clickhouse_enabled", cfg.Clickhouse.Enabled),
	)
	return f, nil
}

// initializeClients initializes the external service clients with health
// checks. Redis is required; Kafka and ClickHouse are optional.
func (f *Factory) initializeClients() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	redisClient, err := client.NewRedisClient(f.config, util.Get())
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	f.redisClient = redisClient
	if err := f.redisClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("redis health check: %w", err)
	}
	util.Info("Redis client initialized and healthy")

	if producer, err := client.NewKafkaProducer(f.config, util.Get()); err != nil {
		util.Warn("Kafka producer initialization failed - proceeding without Kafka", util.ErrorField(err))
	} else {
		f.kafkaProducer = producer
		util.Info("Kafka producer initialized")
	}

	if ch, err := client.NewClickHouseClient(f.config, util.Get()); err != nil {
		util.Warn("ClickHouse initialization failed - proceeding without archive", util.ErrorField(err))
	} else {
		f.clickhouseClient = ch
		util.Info("ClickHouse client initialized")
	}
	return nil
}

func (f *Factory) initializeServices() {
	logger := util.Get()
	cfg := f.config

	store := kv.NewRedisStore(f.redisClient)
	f.hasher = hashing.NewHasher()
	signer := &identity.TokenSigner{
		Key:    []byte(cfg.JWT.Secret),
		TTL:    cfg.JWT.TTL,
		Issuer: cfg.JWT.Issuer,
	}
	f.provider = identity.NewLocalProvider(store, f.hasher, signer, logger)
	f.sender = mail.FromConfig(cfg)

	accountRepo := repository.NewAccountRepository(store)
	otpRepo := repository.NewOtpRepository(store)
	activityRepo := repository.NewActivityRepository(store, cfg.Activity.MaxEntries)
	depositRepo := repository.NewDepositRepository(store)
	bankDepositRepo := repository.NewBankDepositRepository(store)
	roleRepo := repository.NewRoleRepository(store)
	bankRepo := repository.NewBankRepository(store)

	f.activity = service.NewActivityLog(activityRepo, f.kafkaProducer, f.clickhouseClient, logger)
	f.activity.SetCounter(f.metrics)
	f.gate = service.NewAuthorizationGate(f.provider, accountRepo, logger)
	f.accounts = service.NewAccountService(accountRepo, f.provider, f.activity, logger)
	f.otp = service.NewOtpFlow(cfg, otpRepo, accountRepo, f.provider, f.sender, f.activity, logger)
	f.deposits = service.NewDepositService(depositRepo, f.gate, f.activity, logger)
	f.bankDeposits = service.NewBankDepositService(bankDepositRepo, bankRepo, f.gate, f.activity, logger)
	f.roles = service.NewRoleService(roleRepo, accountRepo, f.activity, logger)
	f.banks = service.NewBankService(bankRepo, f.bankDeposits, f.activity, logger)
	f.dashboard = service.NewDashboardService(f.deposits, f.bankDeposits, f.accounts, f.activity, logger)
}

// Handlers builds the HTTP handler bundle for the router.
func (f *Factory) Handlers() *handler.Handlers {
	logger := util.Get()
	return &handler.Handlers{
		Auth:        handler.NewAuthHandler(f.accounts, f.otp, f.gate, logger),
		Staff:       handler.NewStaffHandler(f.accounts, f.gate, logger),
		Deposits:    handler.NewDepositHandler(f.deposits, f.gate, logger),
		BankDeposit: handler.NewBankDepositHandler(f.bankDeposits, f.gate, logger),
		Activities:  handler.NewActivityHandler(f.activity, f.gate, logger),
		Roles:       handler.NewRoleHandler(f.roles, f.gate, logger),
		Banks:       handler.NewBankHandler(f.banks, f.gate, logger),
		Dashboard:   handler.NewDashboardHandler(f.dashboard, f.gate, logger),
	}
}

// HealthCheck probes every configured dependency.
func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	results := make(map[string]error)
	if f.redisClient != nil {
		results["redis"] = f.redisClient.HealthCheck(ctx)
	}
	if f.clickhouseClient != nil {
		results["clickhouse"] = f.clickhouseClient.HealthCheck(ctx)
	}
	return results
}

func (f *Factory) Close() error {
	var closeErr error
	f.closeOnce.Do(func() {
		util.Info("Shutting down factory")
		if f.kafkaProducer != nil {
			if err := f.kafkaProducer.Close(); err != nil {
				util.Warn("Failed to close Kafka producer", util.ErrorField(err))
				closeErr = err
			}
		}
		if f.clickhouseClient != nil {
			if err := f.clickhouseClient.Close(); err != nil {
				util.Warn("Failed to close ClickHouse client", util.ErrorField(err))
				closeErr = err
			}
		}
		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Warn("Failed to close Redis client", util.ErrorField(err))
				closeErr = err
			}
		}
		close(f.closed)
	})
	return closeErr
}

func (f *Factory) Config() *config.Config {
	return f.config
}

func (f *Factory) TLSManager() *tlsutil.Manager {
	return f.tlsManager
}

func (f *Factory) Metrics() *obs.Metrics {
	return f.metrics
}
