package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/ibreez3/novel-prep/chapter"
	"github.com/ibreez3/novel-prep/config"
	"github.com/ibreez3/novel-prep/logging"
)

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "配置文件路径")
	encoding := flag.String("encoding", "", "源文件编码：utf-8、gbk 或 gb18030")
	out := flag.String("out", "", "输出根目录，默认为当前目录")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *encoding != "" {
		cfg.Chapter.Encoding = *encoding
	}
	if *out != "" {
		cfg.Chapter.OutDir = *out
	}
	logger, err := logging.New(cfg.Log.Level, isatty.IsTerminal(os.Stdout.Fd()))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	path := flag.Arg(0)
	if path == "" {
		fmt.Print("Enter the path to your novel text file: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		path = strings.Trim(strings.TrimSpace(line), `"'`)
	}
	if path == "" {
		fmt.Println("No file path provided.")
		os.Exit(2)
	}

	dir, files, err := chapter.NewSplitter(cfg.Chapter.Encoding, cfg.Chapter.OutDir, logger).SplitFile(path)
	if err != nil {
		if errors.Is(err, chapter.ErrNoChapters) {
			fmt.Println("No chapters found! Please check if the file format is correct.")
		}
		logger.Error("split failed", zap.String("file", path), zap.Error(err))
		os.Exit(1)
	}
	for _, f := range files {
		fmt.Println("Created:", filepath.Base(f))
	}
	fmt.Printf("\nSplit complete! %d chapters saved to '%s'\n", len(files), dir)
}
