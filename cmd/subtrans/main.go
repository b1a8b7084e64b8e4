package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/machinewrapped/go-subtrans/internal/config"
	"github.com/machinewrapped/go-subtrans/internal/service"
	"github.com/machinewrapped/go-subtrans/pkg/log"
)

func main() {
	output := flag.String("o", "", "output subtitle file path")
	mode := flag.String("project", "", "project file mode (true, write, read, reload, resume, retranslate, reparse, preview)")
	writeBackup := flag.Bool("writebackup", false, "write a backup of the project file when it is loaded")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: subtrans [flags] <input.srt>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	opts := []config.Option{config.WithWriteBackup(*writeBackup)}
	if *mode != "" {
		opts = append(opts, config.WithMode(*mode))
	}

	cfg, err := config.NewFromEnv(opts...)
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	svc := service.NewTransService(cfg)
	err = svc.Run(context.Background(), service.RunRequest{
		InputPath:   flag.Arg(0),
		OutputPath:  *output,
		WriteBackup: cfg.Project.WriteBackup,
		// Translation backends plug in as a LineTranslator; the default
		// passes the source text through unchanged, which is useful for
		// previewing batching and project file handling.
		TranslateLine: passthrough,
	})
	if err != nil {
		log.Fatal("Translation run failed: %v", err)
	}
}

func passthrough(_ context.Context, text, _ string) (string, error) {
	return text, nil
}
