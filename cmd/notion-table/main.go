package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/navikt/notion-table/pkg/config"
	"github.com/navikt/notion-table/pkg/flat"
	"github.com/navikt/notion-table/pkg/notion"
	"github.com/navikt/notion-table/pkg/sync"
	"github.com/navikt/notion-table/pkg/urls"
)

var (
	configFilePath   = flag.String("config", "", "path to config file")
	apiKey           = flag.String("api-key", "", "api key, overrides config file and environment")
	nrows            = flag.Int("nrows", 0, "maximum number of rows to download, 0 means all")
	resolveRelations = flag.Bool("resolve-relations", false, "replace relation ids with the title of the referenced page")
	title            = flag.String("title", "", "title for the database created when uploading to a page")
	output           = flag.String("output", "", "csv file to write, defaults to a slug of the database title")
	printTable       = flag.Bool("print", false, "render the downloaded table to stdout instead of writing csv")
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  notion-table download <database-url>
  notion-table upload <csv-file> <page-or-database-url>

`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(*configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	config.SetDefault(cfg)

	key, err := config.ResolveAPIKey(*apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("resolving api key")
	}

	client := notion.NewClient(key, log, notion.WithBaseURL(cfg.BaseURL))
	svc := sync.New(client, log)

	ctx := context.Background()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "download":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		if err := download(ctx, svc, client, args[1], log); err != nil {
			log.Fatal().Err(err).Msg("download failed")
		}
	case "upload":
		if len(args) != 3 {
			usage()
			os.Exit(2)
		}
		if err := upload(ctx, svc, args[1], args[2], log); err != nil {
			log.Fatal().Err(err).Msg("upload failed")
		}
	default:
		usage()
		os.Exit(2)
	}
}

func download(ctx context.Context, svc *sync.Service, client notion.Operations, target string, log zerolog.Logger) error {
	table, err := svc.Download(ctx, target, sync.DownloadOptions{
		NRows:            *nrows,
		ResolveRelations: *resolveRelations,
	})
	if err != nil {
		return err
	}

	if *printTable {
		fmt.Println(table.Render())

		return nil
	}

	out := *output
	if out == "" {
		out, err = defaultOutput(ctx, client, target)
		if err != nil {
			return err
		}
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := table.WriteCSV(f); err != nil {
		return err
	}

	log.Info().Str("file", out).Int("rows", table.NumRows()).Msg("wrote csv")

	return nil
}

// defaultOutput names the csv file after the remote database title.
func defaultOutput(ctx context.Context, client notion.Operations, target string) (string, error) {
	id, _, err := urls.Parse(target)
	if err != nil {
		return "", err
	}

	db, err := client.GetDatabase(ctx, id)
	if err != nil {
		return "", err
	}

	name := slug.Make(notion.PlainText(db.Title))
	if name == "" {
		name = id
	}

	return name + ".csv", nil
}

func upload(ctx context.Context, svc *sync.Service, csvFile, target string, log zerolog.Logger) error {
	f, err := os.Open(csvFile)
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := flat.ReadCSV(f)
	if err != nil {
		return err
	}

	databaseID, err := svc.Upload(ctx, table, target, sync.UploadOptions{
		Title: *title,
	})
	if err != nil {
		return err
	}

	log.Info().Str("database_id", databaseID).Int("rows", table.NumRows()).Msg("upload complete")

	return nil
}
