package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/ibreez3/novel-prep/config"
	"github.com/ibreez3/novel-prep/logging"
	"github.com/ibreez3/novel-prep/script"
	"github.com/ibreez3/novel-prep/service"
)

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "配置文件路径")
	apiKey := flag.String("api-key", "", "API Key（覆盖环境变量）")
	provider := flag.String("provider", "", "模型服务：gemini 或 openai")
	model := flag.String("model", "", "模型名称")
	textFile := flag.String("text-file", "", "输入文本文件")
	folder := flag.String("folder", "", "包含 .txt 文件的文件夹")
	output := flag.String("output", "", "输出 JSON 文件（单文件）或文件夹（批量）")
	prompt := flag.String("prompt", "", "自定义提示词")
	promptFile := flag.String("prompt-file", "", "从文件读取提示词")
	delay := flag.Duration("delay", -1, "批量请求间隔，例如 2s；0 表示不等待；不设置时使用配置")
	ping := flag.Bool("ping", false, "只测试 API Key 是否可用")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	overrides{Provider: *provider, Model: *model, APIKey: *apiKey, Delay: *delay}.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if !*ping && *textFile == "" && *folder == "" {
		fmt.Fprintln(os.Stderr, "必须提供 -text-file 或 -folder")
		flag.Usage()
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Log.Level, isatty.IsTerminal(os.Stderr.Fd()))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	instr := script.DefaultPrompt
	switch {
	case *promptFile != "":
		b, err := os.ReadFile(*promptFile)
		if err != nil {
			logger.Fatal("read prompt file", zap.Error(err))
		}
		instr = string(b)
	case *prompt != "":
		instr = *prompt
	case cfg.LLM.PromptFile != "":
		if b, err := os.ReadFile(cfg.LLM.PromptFile); err == nil {
			instr = string(b)
		} else {
			logger.Warn("prompt file unreadable, using default", zap.String("path", cfg.LLM.PromptFile), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli, err := service.NewClient(ctx, cfg)
	if err != nil {
		fmt.Println("错误：", err)
		os.Exit(1)
	}
	gen := script.NewGenerator(cli, cfg.Model()).
		WithLogger(func(s string) { fmt.Println(s) }).
		WithZap(logger).
		WithDelay(time.Duration(cfg.LLM.DelayMs) * time.Millisecond).
		WithRequestTimeout(time.Duration(cfg.LLM.RequestTimeoutSec) * time.Second)

	if *ping {
		if err := gen.Ping(ctx); err != nil {
			fmt.Println("API Key 测试失败：", err)
			os.Exit(1)
		}
		fmt.Println("API Key 测试成功")
		return
	}

	if *textFile != "" {
		out := *output
		if out == "" {
			out = script.DefaultOutput(*textFile)
		}
		if _, err := gen.File(ctx, instr, *textFile, out); err != nil {
			fmt.Println("处理失败")
			os.Exit(1)
		}
		fmt.Println("处理完成：", out)
		return
	}

	results, err := gen.Folder(ctx, *folder, instr, *output)
	if err != nil {
		logger.Error("batch aborted", zap.Error(err))
		os.Exit(1)
	}
	ok, _ := script.Counts(results)
	fmt.Printf("批量处理完成：%d/%d 个文件成功处理\n", ok, len(results))
}
