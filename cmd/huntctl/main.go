// huntctl administers the scavenger hunt database: seeding clue packs,
// inspecting the catalog and resetting player sessions.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/avelasco/textquest/internal/domain"
	"github.com/avelasco/textquest/internal/store"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var dbPath string

func main() {
	root := &cobra.Command{
		Use:           "huntctl",
		Short:         "Administer the scavenger hunt database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "./data/hunt.db", "path to the sqlite database")
	root.AddCommand(seedCmd(), cluesCmd(), statsCmd(), resetCmd())

	if err := root.Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func openStore() (store.Repository, error) {
	repo, err := store.NewSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	return repo, nil
}

// cluePack is the YAML seeding format.
type cluePack struct {
	Game struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		MaxPlayers  int    `yaml:"maxPlayers"`
	} `yaml:"game"`
	Clues []struct {
		ID       string `yaml:"id"`
		Type     string `yaml:"type"`
		Question string `yaml:"question"`
		Answer   string `yaml:"answer"`
		Hint     string `yaml:"hint"`
		MediaURL string `yaml:"mediaUrl"`
	} `yaml:"clues"`
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML clue pack into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read clue pack: %w", err)
			}

			var pack cluePack
			if err := yaml.Unmarshal(data, &pack); err != nil {
				return fmt.Errorf("parse clue pack: %w", err)
			}
			if len(pack.Clues) == 0 {
				return fmt.Errorf("clue pack %s contains no clues", file)
			}

			repo, err := openStore()
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx := context.Background()

			gameID := pack.Game.ID
			if gameID == "" {
				gameID = domain.DefaultGameID
			}
			existing, err := repo.GetGame(ctx, gameID)
			if err != nil {
				return err
			}
			if existing == nil {
				game := &domain.Game{
					ID:          gameID,
					Name:        pack.Game.Name,
					Description: pack.Game.Description,
					Active:      true,
					StartTime:   time.Now(),
					MaxPlayers:  pack.Game.MaxPlayers,
				}
				if err := repo.CreateGame(ctx, game); err != nil {
					return err
				}
				color.Green("created game %q", gameID)
			}

			created, skipped := 0, 0
			for _, c := range pack.Clues {
				if c.Question == "" || c.Answer == "" {
					return fmt.Errorf("clue %q: question and answer are required", c.ID)
				}
				id := c.ID
				if id == "" {
					id = uuid.NewString()
				}
				if existing, err := repo.GetClue(ctx, id); err != nil {
					return err
				} else if existing != nil {
					color.Yellow("skipping existing clue %q", id)
					skipped++
					continue
				}

				clueType := c.Type
				if clueType == "" {
					clueType = domain.ClueTypeText
				}
				clue := &domain.Clue{
					ID:       id,
					Type:     clueType,
					Question: c.Question,
					Hint:     c.Hint,
					MediaURL: c.MediaURL,
				}
				clue.SetAnswer(c.Answer)
				if err := repo.CreateClue(ctx, clue); err != nil {
					return err
				}
				created++
			}

			color.Green("seeded %d clues (%d skipped) from %s", created, skipped, file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "clue pack YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func cluesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clues",
		Short: "List the clue catalog in play order",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openStore()
			if err != nil {
				return err
			}
			defer repo.Close()

			clues, err := repo.ListClues(context.Background())
			if err != nil {
				return err
			}
			if len(clues) == 0 {
				color.Yellow("catalog is empty")
				return nil
			}

			for i, clue := range clues {
				color.Cyan("%d. [%s] %s", i+1, clue.ID, clue.Type)
				fmt.Printf("   Q: %s\n", clue.Question)
				fmt.Printf("   A: %s\n", clue.Answer)
				if clue.Hint != "" {
					fmt.Printf("   hint: %s\n", clue.Hint)
				}
				if clue.MediaURL != "" {
					fmt.Printf("   media: %s\n", clue.MediaURL)
				}
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show player and catalog statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openStore()
			if err != nil {
				return err
			}
			defer repo.Close()

			stats, err := repo.SessionStats(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("clues:             %d\n", stats.TotalClues)
			fmt.Printf("players:           %d\n", stats.TotalPlayers)
			fmt.Printf("active players:    %d\n", stats.ActivePlayers)
			fmt.Printf("completed players: %d\n", stats.CompletedPlayers)
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <phone-number>",
		Short: "Delete a player's session so they can start over",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openStore()
			if err != nil {
				return err
			}
			defer repo.Close()

			deleted, err := repo.DeleteSession(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				color.Yellow("no session found for %s", args[0])
				return nil
			}
			color.Green("session for %s deleted", args[0])
			return nil
		},
	}
}
