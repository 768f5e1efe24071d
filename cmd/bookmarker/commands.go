package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/MrSnakeDoc/bookmarker/internal/app"
	"github.com/MrSnakeDoc/bookmarker/internal/codec"
	"github.com/MrSnakeDoc/bookmarker/internal/domain"
	"github.com/MrSnakeDoc/bookmarker/internal/pageinfo"
	"github.com/MrSnakeDoc/bookmarker/internal/query"
	"github.com/MrSnakeDoc/bookmarker/internal/service"
)

var out io.Writer = os.Stdout

// withService runs fn against the configured store.
func withService(ctx context.Context, fn func(*service.Service) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	core, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer core.Close()

	return fn(core.Service)
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Save a page as a new bookmark",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "page URL", Required: true},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "page title"},
			&cli.StringFlag{Name: "tags", Usage: "comma separated tags"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "category"},
			&cli.StringFlag{Name: "notes", Usage: "free text notes"},
			&cli.BoolFlag{Name: "fetch", Usage: "fetch the page to fill title, favicon, category and tags"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(ctx, func(s *service.Service) error {
				page := pageinfo.Static{Title: cmd.String("title"), URL: cmd.String("url")}
				tags, category := cmd.String("tags"), cmd.String("category")

				if cmd.Bool("fetch") {
					sug, err := s.Suggest(ctx, page.URL)
					if err != nil {
						return fmt.Errorf("failed to fetch page: %w", err)
					}
					if page.Title == "" {
						page.Title = sug.Page.Title
					}
					page.FaviconURL = sug.Page.FaviconURL
					if category == "" {
						category = sug.Hints.SuggestedCategory
					}
					if tags == "" {
						tags = strings.Join(sug.Hints.SuggestedTags, ", ")
					}
				}

				b, err := s.Save(ctx, service.SaveInput{
					Page:     page,
					Tags:     tags,
					Category: category,
					Notes:    cmd.String("notes"),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✅ saved %s (%s)\n", b.Title, b.ID)
				return nil
			})
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List bookmarks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "q", Usage: "search title, url, notes and tags"},
			&cli.StringFlag{Name: "tag", Usage: "only bookmarks with this tag"},
			&cli.StringFlag{Name: "category", Usage: "only bookmarks in this category"},
			&cli.StringFlag{Name: "sort", Usage: "date | domain | category | title", Value: string(query.SortDate)},
			&cli.BoolFlag{Name: "group", Usage: "group by domain"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(ctx, func(s *service.Service) error {
				view, err := s.Browse(ctx, query.Options{
					Search:   cmd.String("q"),
					Tag:      cmd.String("tag"),
					Category: cmd.String("category"),
					Sort:     query.SortKey(cmd.String("sort")),
				})
				if err != nil {
					return err
				}

				if cmd.Bool("group") {
					for _, g := range view.Groups {
						fmt.Fprintf(out, "%s (%d)\n", g.Domain, len(g.Bookmarks))
						printBookmarks(g.Bookmarks)
						fmt.Fprintln(out)
					}
				} else {
					printBookmarks(view.Bookmarks)
				}
				fmt.Fprintf(out, "%d of %d bookmarks\n", len(view.Bookmarks), view.Total)
				return nil
			})
		},
	}
}

func printBookmarks(bookmarks []domain.Bookmark) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tURL\tCATEGORY\tTAGS\tADDED")
	for _, b := range bookmarks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.URL, b.Category, strings.Join(b.Tags, ","), b.DateAdded.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a bookmark",
		ArgsUsage: "ID",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("a bookmark id is required")
			}
			return withService(ctx, func(s *service.Service) error {
				if err := s.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(out, "🗑️  deleted %s\n", id)
				return nil
			})
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import bookmarks from a JSON, CSV, HTML or homepage YAML file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json | csv | html | homepage (default: from extension)"},
			&cli.BoolFlag{Name: "overwrite", Usage: "replace the bookmarks instead of merging"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("a file to import is required")
			}

			format, err := formatFor(cmd.String("format"), path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			return withService(ctx, func(s *service.Service) error {
				res, err := s.Import(ctx, format, data, cmd.Bool("overwrite"))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✅ imported %d bookmarks (%d new ids), %d total\n",
					res.Imported, res.Reassigned, res.Total)
				return nil
			})
		},
	}
}

func formatFor(flag, path string) (codec.Format, error) {
	if flag != "" {
		return codec.ParseFormat(flag)
	}
	return codec.DetectFormat(path)
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export every bookmark",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json | csv | html | homepage", Value: "json"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default: stdout)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := codec.ParseFormat(cmd.String("format"))
			if err != nil {
				return err
			}

			return withService(ctx, func(s *service.Service) error {
				exp, err := s.Export(ctx, format)
				if err != nil {
					return err
				}

				path := cmd.String("out")
				if path == "" {
					_, err := out.Write(exp.Data)
					return err
				}
				if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintf(out, "✅ exported %d bookmarks to %s\n", exp.Count, path)
				return nil
			})
		},
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List the categories",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withService(ctx, func(s *service.Service) error {
				categories, err := s.Categories(ctx)
				if err != nil {
					return err
				}
				for _, c := range categories {
					fmt.Fprintln(out, c)
				}
				return nil
			})
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a category",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := strings.Join(cmd.Args().Slice(), " ")
					return withService(ctx, func(s *service.Service) error {
						categories, err := s.AddCategory(ctx, name)
						if err != nil {
							return err
						}
						fmt.Fprintln(out, strings.Join(categories, ", "))
						return nil
					})
				},
			},
		},
	}
}

func resetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Delete every bookmark and restore the default categories",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "confirm the reset"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.Bool("yes") {
				return errors.New("refusing to reset without --yes")
			}
			return withService(ctx, func(s *service.Service) error {
				if err := s.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "✅ collection reset to defaults")
				return nil
			})
		},
	}
}
