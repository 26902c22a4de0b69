package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/kardianos/osext"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	console "github.com/rvndudz/scheduled-music-console/internal"
	"github.com/rvndudz/scheduled-music-console/internal/ctxhelper"
	"github.com/rvndudz/scheduled-music-console/internal/log"
	"github.com/rvndudz/scheduled-music-console/internal/models"
	eventrepo "github.com/rvndudz/scheduled-music-console/internal/repos/event/jsonfile"
	sessionrepo "github.com/rvndudz/scheduled-music-console/internal/repos/session/inmem"
	userrepo "github.com/rvndudz/scheduled-music-console/internal/repos/user/inmem"
	"github.com/rvndudz/scheduled-music-console/internal/storage"
	"github.com/rvndudz/scheduled-music-console/internal/timefmt"
)

const (
	appName    = "Scheduled Music Console"
	appVersion = "0.1.0"
)

// Checks and tries to create the given directory recursively (or panics if this fails)
func checkAndCreateDir(path string, logger *logrus.Entry) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.WithField(log.FldPath, path).Info("Directory does not exist - trying to create...")
			if err = os.MkdirAll(path, os.ModePerm); err != nil {
				logger.WithError(err).Fatal("Failed to create directory")
			}
			logger.Info("Directory created successfully")
		} else {
			logger.WithError(err).Fatal("Stat has failed")
		}
	} else {
		if !fileInfo.IsDir() {
			logger.Fatalf("'%s' is not a directory. Remove the plain file if you want to continue", path)
		}
	}
}

func main() {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		panic(err)
	}

	configFile := flag.String(
		"config",
		filepath.Join(execDir, "config.json"),
		"The configuration file to load the application's configuration from",
	)
	flag.Parse()

	ctx := context.Background()

	// Initialize the logger
	logger := logrus.WithField(log.FldVersion, appVersion)
	logger.Infof("%s version %s is starting up...", appName, appVersion)
	ctx = context.WithValue(ctx, ctxhelper.KeyLogger, logger)

	// Load the main configuration file
	cs := console.NewConfigService(*configFile)
	if err := cs.Load(ctx); err != nil {
		logger.WithError(err).Error("Cannot load config. Using defaults")
	}
	conf := cs.GetConfig(ctx)

	logger.Infof("Using '%s' as data directory", conf.DataDir)
	checkAndCreateDir(conf.DataDir, logger)

	// The normalizer interprets operator wall-clock input in the configured timezone
	norm, err := timefmt.NewNormalizer(conf.DisplayTimezone)
	if err != nil {
		logger.WithError(err).Fatal("Configured display timezone is not usable")
	}

	// Connect the object storage holding the uploaded media files
	assets, err := storage.NewR2Client(ctx, conf.Storage, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up the object storage client")
	}

	// Prepare the in-memory user repo and fill it with the operator account
	// TODO: Implement proper user management with a persistent backend
	if conf.Operator == nil {
		logger.Fatal("No operator account configured")
	}
	userRepo := userrepo.New()
	u := models.User{
		Name:     strings.ToLower(conf.Operator.Name),
		FullName: conf.Operator.Name,
	}
	if err := u.SetPassword(conf.Operator.Password); err != nil {
		logger.WithError(err).Fatal("Failed to set password for the operator account")
	}
	if err := userRepo.Create(&u); err != nil {
		logger.WithError(err).Fatal("Failed to create the operator account")
	}
	logger.Infof("Created operator account '%s'", u.Name)

	eventRepo := eventrepo.New(conf.DataDir, logger)
	sessionRepo := sessionrepo.New()

	evSrv := console.NewEventService(eventRepo, assets, norm, logger)
	upSrv := console.NewUploadService(assets, logger)
	sessSrv := console.NewSessionService(sessionRepo, userRepo, logger)

	httpLogger := logger.WithField(log.FldTransport, "HTTP")

	h := console.MakeHTTPHandler(
		evSrv,
		upSrv,
		sessSrv,
		httpLogger,
	)

	// Start listening
	errs := make(chan error)

	// Listen for stop signals that will end the service
	go func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		err := fmt.Errorf("%s", <-c)
		logger.Info("Caught signal to stop. Shutting down.")
		errs <- err
	}()

	go func() {
		httpLogger.WithField("addr", conf.ListenAddress).Info("Starting listening port")
		errs <- http.ListenAndServe(conf.ListenAddress, h)
	}()

	// Watchdog for systemd
	go func() {
		interval, err := daemon.SdWatchdogEnabled(false)
		if err != nil || interval == 0 {
			return
		}
		logger.Info("Activating systemd watchdog goroutine")
		port := strings.Split(conf.ListenAddress, ":")[1]
		url := fmt.Sprintf("http://127.0.0.1:%s/alive", port)
		for {
			if _, err := http.Get(url); err == nil {
				daemon.SdNotify(false, "WATCHDOG=1")
			}
			time.Sleep(interval / 3)
		}
	}()

	// Notify systemd that we are ready to go (if available)
	daemon.SdNotify(false, "READY=1")

	logger.WithError(<-errs).Error("Shutdown complete")
}
