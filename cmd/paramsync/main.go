package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "paramsync:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "paramsync"
	app.Usage = "publish scene parameters to a render-control device and keep them in sync"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	sceneFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML configuration file",
		},
		cli.StringFlag{
			Name:  "params, p",
			Usage: "parameter list document (.yaml, .yml or .json) for the first scene",
		},
		cli.IntFlag{
			Name:  "scenes",
			Value: 1,
			Usage: "number of demo scenes published in selection mode",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "schema",
			Usage: "generate the parameter schema and save it",
			Description: `
Build the schema of the demo scenes and save it. With --out the schema is
written to DIR/schema.json. Otherwise it is sent to the configured device, or
written to schema_path when no device is configured.`,
			Flags: append(sceneFlags, cli.StringFlag{
				Name:  "out, o",
				Usage: "directory receiving schema.json",
			}),
			Action: generateSchema,
		},
		{
			Name:  "run",
			Usage: "connect to the device and synchronize parameters every frame",
			Flags: append(sceneFlags, cli.DurationFlag{
				Name:  "stats-interval",
				Usage: "print engine statistics at this interval, 0 disables",
			}),
			Action: runEngine,
		},
	}
	return app
}
