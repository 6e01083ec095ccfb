package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/arthub/internal/auth"
	"github.com/dmitrijs2005/arthub/internal/blobstore"
	"github.com/dmitrijs2005/arthub/internal/character"
	"github.com/dmitrijs2005/arthub/internal/clipboard"
	"github.com/dmitrijs2005/arthub/internal/config"
	"github.com/dmitrijs2005/arthub/internal/docstore"
	"github.com/dmitrijs2005/arthub/internal/gravatar"
	"github.com/dmitrijs2005/arthub/internal/logging"
	"github.com/dmitrijs2005/arthub/internal/share"
)

// App wires the stores and workflows behind the REPL. The document and
// blob stores are selected by configuration: Postgres and S3 when
// configured, in-memory otherwise.
type App struct {
	config *config.Config
	log    logging.Logger

	docs     docstore.Store
	blobs    blobstore.Store
	auths    *auth.Service
	drafts   character.DraftStore
	urlCache *character.URLCache
	avatar   *gravatar.Machine
	sharing  *share.Machine
	clip     clipboard.Writer

	reader *bufio.Reader

	token    string
	userID   string
	userName string
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	var docs docstore.Store
	if cfg.DatabaseDSN != "" {
		interval := cfg.WatchPollInterval
		if interval <= 0 {
			interval = docstore.DefaultWatchInterval
		}
		pg, err := docstore.NewPostgresStore(ctx, cfg.DatabaseDSN, interval)
		if err != nil {
			return nil, err
		}
		docs = pg
	} else {
		docs = docstore.NewMemoryStore()
	}

	var blobs blobstore.Store
	if cfg.S3BaseEndpoint != "" {
		s3, err := blobstore.NewS3Store(ctx, blobstore.S3Config{
			RootUser:     cfg.S3RootUser,
			RootPassword: cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			return nil, err
		}
		blobs = s3
	} else {
		blobs = blobstore.NewMemoryStore()
	}

	clip := clipboard.System{}

	return &App{
		config:   cfg,
		log:      log,
		docs:     docs,
		blobs:    blobs,
		auths:    auth.NewService(docs, cfg.SecretKey, cfg.TokenValidityDuration),
		drafts:   character.NewMemoryDraftStore(),
		urlCache: character.NewURLCache(),
		avatar:   gravatar.NewMachine(gravatar.NewClient(cfg.GravatarBaseURL), gravatar.NewCache(), log),
		sharing:  nil,
		clip:     clip,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

// Close releases backing store resources.
func (a *App) Close() error {
	if pg, ok := a.docs.(*docstore.PostgresStore); ok {
		return pg.Close()
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

// shareMachine returns the per-session share controller, creating it on
// first use after login so it carries the right owner id.
func (a *App) shareMachine() *share.Machine {
	if a.sharing == nil {
		a.sharing = share.NewMachine(a.docs, a.clip, a.log, a.config.ShareBaseURL, a.userID)
	}
	return a.sharing
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ")"
}

// Run starts the REPL on stdin and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	scanner := bufio.NewScanner(os.Stdin)
	printlnFn("Welcome to arthub CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, scanner)
}
