package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fansqz/go-debug-translator/adapter"
	"github.com/fansqz/go-debug-translator/config"
	"github.com/fansqz/go-debug-translator/constants"
	"github.com/fansqz/go-debug-translator/filecache"
	"github.com/fansqz/go-debug-translator/protocol"
	"github.com/fansqz/go-debug-translator/translator"
	"github.com/fansqz/go-debug-translator/utils"
	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// 定义版本号
const Version = "1.0.0"

const (
	clientID        = "go-debug-translator"
	shutdownTimeout = 5 * time.Second
)

func main() {
	showVersion := flag.Bool("version", false, "Show the version number")
	configPath := flag.String("config", "", "YAML config file")
	listen := flag.String("listen", "", "Address the devtools websocket listens on")
	adapterAddress := flag.String("adapter", "", "TCP address of the debug adapter")
	variant := flag.String("variant", "", "Adapter variant: generic, hhvm, python, node, delve")
	flag.Parse()

	// 检查是否需要显示版本信息
	if *showVersion {
		fmt.Printf("Version: %s\n", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	// 命令行参数覆盖配置文件
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *adapterAddress != "" {
		cfg.Adapter.Address = *adapterAddress
	}
	if *variant != "" {
		cfg.Adapter.Variant = constants.AdapterVariant(*variant)
	}
	if err = cfg.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	//启动日志
	SetupLogger(cfg.LogPath, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	CloseLogger()
	if err != nil {
		fmt.Printf("run fail, err = %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	startArgs, err := cfg.Adapter.StartArguments()
	if err != nil {
		return err
	}

	client, err := adapter.Dial(ctx, cfg.Adapter.Address)
	if err != nil {
		return err
	}
	defer client.Close()

	var tr *translator.Translator
	server := NewServer(utils.GetUUID(), fmt.Sprintf("%s (%s)", clientID, cfg.Adapter.Variant), func(cmd *protocol.Command) {
		tr.Dispatch(cmd)
	})
	tr = translator.NewTranslator(client, filecache.NewRegistry(), server.Send, translator.Config{
		Variant:         cfg.Adapter.Variant,
		StartRequest:    cfg.Adapter.Request,
		StartArguments:  startArgs,
		OwningProcessID: cfg.Adapter.OwningProcessID,
	})

	// 先注册事件回调再初始化，避免丢失 initialized 事件
	client.Start(func(event dap.EventMessage, raw []byte) {
		tr.HandleAdapterEvent(translator.AdapterEvent{Message: event, Raw: raw})
	}, tr.HandleAdapterExit)
	if _, err = client.Initialize(ctx, clientID, cfg.Adapter.ID); err != nil {
		return fmt.Errorf("initialize adapter: %w", err)
	}

	httpServer := &http.Server{Addr: cfg.Listen, Handler: server.Handler()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tr.Run(ctx)
	})
	g.Go(func() error {
		logrus.Infof("[Server] started listening at: %s", cfg.Listen)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		select {
		case <-client.Done():
			// 适配器退出以后继续服务，客户端会收到 detached 事件
			logrus.Infof("[Adapter] connection closed")
		case <-ctx.Done():
		}
		return nil
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
