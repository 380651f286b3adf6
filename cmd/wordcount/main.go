package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/ibreez3/novel-prep/config"
	"github.com/ibreez3/novel-prep/logging"
	"github.com/ibreez3/novel-prep/textio"
	"github.com/ibreez3/novel-prep/wordcount"
)

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	interactive := isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	logger, err := logging.New(cfg.Log.Level, interactive)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	in := bufio.NewReader(os.Stdin)
	folder := flag.Arg(0)
	if folder == "" {
		fmt.Print("Enter the path to the folder containing text files: ")
		folder = cleanPath(readLine(in))
	}
	if folder == "" {
		fmt.Println("No folder path provided.")
		return
	}

	rep, err := wordcount.Analyze(folder, logger)
	if err != nil {
		logger.Error("analysis failed", zap.String("kind", string(wordcount.Classify(err))), zap.Error(err))
		os.Exit(1)
	}
	printReport(rep)
	if len(rep.Long) == 0 || !interactive {
		return
	}

	fmt.Println()
	for i, f := range rep.Long {
		plan := wordcount.PlanParts(f.Count)
		fmt.Printf("  %d. %s (%d) -> %d 部分 %s\n", i+1, f.Name, f.Count, plan.N, strings.Join(plan.Labels, ""))
	}
	fmt.Print("选择要拆分的文件（a 全部，逗号分隔序号，回车跳过）: ")
	picked, err := parseSelection(readLine(in), len(rep.Long))
	if err != nil {
		fmt.Println("输入无效：", err)
		os.Exit(2)
	}
	if len(picked) == 0 {
		fmt.Println("未拆分任何文件。")
		return
	}
	names := make([]string, 0, len(picked))
	for _, i := range picked {
		names = append(names, rep.Long[i].Name)
	}
	fmt.Printf("将拆分 %d 个文件，拆分后原文件将被删除！确认继续？(y/N): ", len(names))
	if !confirmed(readLine(in)) {
		fmt.Println("已取消，未拆分任何文件。")
		return
	}
	sum := wordcount.NewExecutor(textio.FS{}, logger).ExecuteAll(wordcount.Plan(rep, names))
	for _, r := range sum.Results {
		if r.Err != nil {
			fmt.Printf("  ✗ %s: %s\n", r.Job.Name, r.Error)
			for _, p := range r.Parts {
				fmt.Printf("      已写出但未清理: %s\n", filepath.Base(p))
			}
			continue
		}
		parts := make([]string, len(r.Parts))
		for i, p := range r.Parts {
			parts[i] = filepath.Base(p)
		}
		fmt.Printf("  ✓ %s -> %s\n", r.Job.Name, strings.Join(parts, ", "))
	}
	fmt.Printf("拆分完成：成功 %d 个，失败 %d 个\n", sum.Succeeded, sum.Failed)
}

func printReport(rep wordcount.Report) {
	fmt.Printf("\n%-40s %10s  %s\n", "filename", "word_count", "status")
	for _, f := range rep.Files {
		fmt.Printf("%-40s %10d  %s\n", f.Name, f.Count, f.Status())
	}
	fmt.Printf("\nReport saved to %s\n", rep.CSVPath)
	fmt.Printf("%d of %d files exceed %d characters.\n", len(rep.Long), len(rep.Files), wordcount.Limit)
}

func readLine(r *bufio.Reader) string {
	s, _ := r.ReadString('\n')
	return strings.TrimSpace(s)
}

// cleanPath drops the quotes a shell drag-and-drop leaves around a path.
func cleanPath(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
