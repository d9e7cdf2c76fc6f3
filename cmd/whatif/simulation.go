package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdulachik/whatif/internal/app"
	"github.com/abdulachik/whatif/internal/config"
	"github.com/abdulachik/whatif/internal/simulation"
	"github.com/abdulachik/whatif/internal/story"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new simulation",
	Long: `Start a new simulation from the decision you did not make and print the
opening chapter. The simulation is stored so it can be continued with "next".`,
	Example: `  whatif start --name Deniz --birth-year 1997 --sun Leo --moon Pisces \
    --mercury Virgo --venus Cancer --mars Aries \
    --category career --choice "Quit my job and open a bakery in Lisbon"`,
	RunE: runStart,
}

var nextCmd = &cobra.Command{
	Use:   "next <id>",
	Short: "Generate the next chapter of a simulation",
	Args:  cobra.ExactArgs(1),
	RunE:  runNext,
}

var letterCmd = &cobra.Command{
	Use:   "letter <id>",
	Short: "Write the letter from your other self and finish the simulation",
	Args:  cobra.ExactArgs(1),
	RunE:  runLetter,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored simulation",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent simulations",
	RunE:  runList,
}

var (
	startName     string
	startBirth    int
	startProfile  story.Profile
	startCategory string
	startChoice   string

	nextChoice string
	listLimit  int
)

func init() {
	f := startCmd.Flags()
	f.StringVar(&startName, "name", "", "your name")
	f.IntVar(&startBirth, "birth-year", 0, "your birth year")
	f.StringVar(&startProfile.Sun, "sun", "", "sun sign")
	f.StringVar(&startProfile.Moon, "moon", "", "moon sign")
	f.StringVar(&startProfile.Mercury, "mercury", "", "mercury sign")
	f.StringVar(&startProfile.Venus, "venus", "", "venus sign")
	f.StringVar(&startProfile.Mars, "mars", "", "mars sign")
	f.StringVar(&startProfile.Rising, "rising", "", "rising sign (optional)")
	f.StringVar(&startCategory, "category", string(story.CategoryCareer), "choice category: love, career, location, education or risk")
	f.StringVar(&startChoice, "choice", "", "the road not taken")
	_ = startCmd.MarkFlagRequired("name")
	_ = startCmd.MarkFlagRequired("birth-year")
	_ = startCmd.MarkFlagRequired("sun")
	_ = startCmd.MarkFlagRequired("choice")

	nextCmd.Flags().StringVar(&nextChoice, "choice", "", "your decision for the last dilemma (empty lets it flow)")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum number of simulations")

	rootCmd.AddCommand(startCmd, nextCmd, letterCmd, showCmd, listCmd)
}

// loadApp builds the application. generate requires credentials.
func loadApp(ctx context.Context, generate bool) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	validate := cfg.Validate
	if generate {
		validate = cfg.ValidateForGeneration
	}
	if err := validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return app.New(ctx, cfg)
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.Simulations.Start(ctx, simulation.StartInput{
		Name:      startName,
		BirthYear: startBirth,
		Profile:   startProfile,
		Choice:    story.Choice{Category: story.Category(strings.ToLower(startCategory)), Text: startChoice},
	})
	if err != nil {
		return fmt.Errorf("start simulation: %w", err)
	}

	fmt.Println()
	fmt.Println(renderChapter(1, *s.Current(), s.Stats))
	fmt.Printf("Continue with: whatif next %s --choice \"...\"\n", s.ID)
	return nil
}

func runNext(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.Simulations.Advance(ctx, args[0], nextChoice)
	if err != nil {
		return fmt.Errorf("advance simulation: %w", err)
	}

	fmt.Println()
	fmt.Println(renderChapter(len(s.Chapters), *s.Current(), s.Stats))
	if s.Complete() {
		fmt.Printf("The story is complete. Read your letter with: whatif letter %s\n", s.ID)
	}
	return nil
}

func runLetter(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.Simulations.Finish(ctx, args[0])
	if err != nil {
		return fmt.Errorf("finish simulation: %w", err)
	}

	fmt.Println()
	fmt.Println(renderLetter(s.Letter))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.Simulations.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get simulation: %w", err)
	}

	fmt.Println()
	fmt.Print(renderSession(s))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	sessions, err := a.Simulations.List(ctx, listLimit)
	if err != nil {
		return fmt.Errorf("list simulations: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No simulations yet.")
		return nil
	}

	for _, s := range sessions {
		state := fmt.Sprintf("%d/%d", len(s.Chapters), simulation.MaxChapters)
		if s.Finished() {
			state = "finished"
		}
		fmt.Printf("%s  %-10s  %-12s  %s  %s\n",
			s.ID, state, s.Name, s.UpdatedAt.Local().Format("2006-01-02 15:04"), s.Choice.Text)
	}
	return nil
}
