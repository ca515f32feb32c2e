// Command lfxctl is the practical way an end user turns the pacer on for a
// binary they don't control the source of: it sets the LFX_* environment
// variables from flags and execs the target process.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	app := cli.NewApp()
	app.Name = "lfxctl"
	app.Usage = "launch a game under the frame pacer"

	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "run <game> [args...] with pacing enabled",
			ArgsUsage: "-- <game> [args...]",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "max-fps", Usage: "cap target_frame_time to 1e9/max-fps nanoseconds"},
				cli.BoolFlag{Name: "placebo", Usage: "measure but do not sleep (A/B comparison)"},
				cli.StringFlag{Name: "ue4-hook", Usage: "hex address of an engine tick function to trampoline"},
			},
			Action: runGame,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGame(c *cli.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return fmt.Errorf("lfxctl run: no game binary given, usage: lfxctl run -- <game> [args...]")
	}

	env := os.Environ()
	if fps := c.Int("max-fps"); fps > 0 {
		env = append(env, "LFX_MAX_FPS="+strconv.Itoa(fps))
	}
	if c.Bool("placebo") {
		env = append(env, "LFX_PLACEBO=1")
	}
	if hook := c.String("ue4-hook"); hook != "" {
		env = append(env, "LFX_UE4_HOOK="+hook)
	}

	log.Info().
		Str("game", args[0]).
		Int("max_fps", c.Int("max-fps")).
		Bool("placebo", c.Bool("placebo")).
		Msg("launching game under frame pacer")

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
