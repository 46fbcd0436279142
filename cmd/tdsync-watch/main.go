// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// tdsync-watch connects to a JSON-bridged backend, mirrors its state and
// prints the event stream. It is the demo consumer for the tdsync library.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/fernwire/tdsync"
	"github.com/fernwire/tdsync/archive"
	"github.com/fernwire/tdsync/notify"
	"github.com/fernwire/tdsync/socket"
	"github.com/fernwire/tdsync/types/events"
	tdLog "github.com/fernwire/tdsync/util/log"
)

const statusInterval = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "tdsync-watch <backend-url>",
	Short: "Mirror a JSON-bridged backend and print its event stream",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().String("config", "", "path to a YAML config file")
	rootCmd.Flags().Duration("timeout", 0, "exit after this long (0 means run until interrupted)")
	rootCmd.Flags().String("db", "", "PostgreSQL DSN for the message archive")
	rootCmd.Flags().String("proxy", "", "proxy for the websocket dial (socks5:// or http://)")
	rootCmd.Flags().String("log-file", "", "write logs to this file instead of stderr")
	rootCmd.Flags().String("log-level", "DEBUG", "minimum log level (DEBUG, INFO, WARN or ERROR)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges defaults, an optional YAML file and TDSYNC_* environment
// variables into the library config. Validation happens in NewClient.
func loadConfig(path string) (*tdsync.Config, error) {
	viper.SetDefault("api_id", 0)
	viper.SetDefault("api_hash", "")
	viper.SetDefault("database_directory", "tdlib")
	viper.SetDefault("application_version", "tdsync-watch 0.1.0")
	viper.SetDefault("use_file_database", true)
	viper.SetDefault("use_chat_info_database", true)
	viper.SetDefault("use_message_database", true)

	viper.SetEnvPrefix("TDSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("tdsync-watch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &tdsync.Config{
		APIID:                     int32(viper.GetInt("api_id")),
		APIHash:                   viper.GetString("api_hash"),
		DatabaseDirectory:         viper.GetString("database_directory"),
		DatabaseEncryptionKey:     viper.GetString("database_encryption_key"),
		ApplicationVersion:        viper.GetString("application_version"),
		UseFileDatabase:           viper.GetBool("use_file_database"),
		UseChatInfoDatabase:       viper.GetBool("use_chat_info_database"),
		UseMessageDatabase:        viper.GetBool("use_message_database"),
		UseSecretChats:            viper.GetBool("use_secret_chats"),
		SystemLanguageCode:        viper.GetString("system_language_code"),
		DeviceModel:               viper.GetString("device_model"),
		SystemVersion:             viper.GetString("system_version"),
		BackendLogVerbosity:       viper.GetInt("backend_log_verbosity"),
		NotificationGroupCountMax: viper.GetInt("notification_group_count_max"),
	}, nil
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	configPath, _ := cmd.Flags().GetString("config")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	dbDSN, _ := cmd.Flags().GetString("db")
	proxyAddr, _ := cmd.Flags().GetString("proxy")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logFile, _ := cmd.Flags().GetString("log-file")
	logLevel, _ := cmd.Flags().GetString("log-level")
	var log tdLog.Logger
	if logFile != "" {
		log, err = tdLog.File("", logLevel, logFile, true, true)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer log.Close()
	} else {
		zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli}).With().Timestamp().Logger()
		log = tdLog.Zerolog(zlog)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sock := socket.NewJSONSocket(args[0], log.Sub("Socket"))
	if proxyAddr != "" {
		if err = sock.SetProxyAddress(proxyAddr); err != nil {
			return fmt.Errorf("failed to configure proxy: %w", err)
		}
	}

	cli, err := tdsync.NewClient(sock, cfg, log.Sub("Client"))
	if err != nil {
		return err
	}

	var ar *archive.Archive
	if dbDSN != "" {
		if ar, err = archive.New(ctx, dbDSN, log.Sub("Archive")); err != nil {
			return err
		}
		defer ar.Close()
		ar.Subscribe(cli)
	}

	cli.AddEventHandler(eventPrinter(ctx, log.Sub("Events"), ar))

	mgr := notify.NewManager(cli.Store, &logPresenter{log: log.Sub("Notify")}, log.Sub("Notify"))
	defer mgr.Close()
	cli.AddEventHandler(mgr.HandleEvent)

	if err = sock.Connect(ctx); err != nil {
		return err
	}
	defer sock.Close()
	if err = cli.Connect(); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gCtx.Done()
		log.Infof("Shutting down")
		cli.Disconnect()
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				log.Infof("Mirroring %d chats, connection state %s", cli.Store.ChatCount(), cli.Store.ConnectionState())
			case <-gCtx.Done():
				return nil
			}
		}
	})
	log.Infof("Watching %s", args[0])
	return g.Wait()
}

// eventPrinter logs the interesting part of the event stream. With an
// archive attached, chat discoveries also print a short archived backlog.
func eventPrinter(ctx context.Context, log tdLog.Logger, ar *archive.Archive) tdsync.EventHandler {
	return func(rawEvt any) {
		switch evt := rawEvt.(type) {
		case *events.Version:
			log.Infof("Backend version %s", evt.Version)
		case *events.AuthorizationState:
			log.Infof("Authorization state: %s", evt.State)
		case *events.ConnectionState:
			log.Infof("Connection state: %s", evt.State)
		case *events.OwnUserID:
			log.Infof("Authenticated as user %d", evt.UserID)
		case *events.NewChat:
			log.Infof("Chat %d: %s", evt.ChatID, evt.Chat.String("title"))
			printBacklog(ctx, log, ar, evt.ChatID)
		case *events.NewMessage:
			log.Infof("Message %d in chat %d (%s)", evt.Message.Int64("id"), evt.ChatID, evt.Message.Object("content").Type())
		case *events.MessagesDeleted:
			log.Infof("%d messages deleted in chat %d", len(evt.MessageIDs), evt.ChatID)
		case *events.BackendError:
			log.Warnf("Backend error %d: %s", evt.Code, evt.Message)
		}
	}
}

func printBacklog(ctx context.Context, log tdLog.Logger, ar *archive.Archive, chatID int64) {
	if ar == nil {
		return
	}
	messages, err := ar.RecentMessages(ctx, chatID, 3)
	if err != nil {
		log.Warnf("Failed to fetch backlog for chat %d: %v", chatID, err)
		return
	}
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		log.Infof("  backlog %d: %s from %d", msg.MessageID, msg.ContentType, msg.SenderID)
	}
}

// logPresenter renders alerts into the log instead of a desktop surface.
type logPresenter struct {
	log tdLog.Logger
}

func (lp *logPresenter) Present(alert *notify.Alert) error {
	if alert.Sender != "" {
		return lp.log.Infof("[%s] %s: %s", alert.Title, alert.Sender, alert.Body)
	}
	return lp.log.Infof("[%s] %s", alert.Title, alert.Body)
}

func (lp *logPresenter) Dismiss(alertID string) error {
	return lp.log.Debugf("Dismissed alert %s", alertID)
}
