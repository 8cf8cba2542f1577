package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/ameledin/studiovault/internal/buildinfo"
	"github.com/ameledin/studiovault/internal/client/cli"
	"github.com/ameledin/studiovault/internal/client/config"
)

// flags that consume a value; everything else on the command line is a file
// path to upload.
var valueFlags = map[string]struct{}{
	"-a": {}, "-l": {}, "-n": {}, "-r": {}, "-t": {}, "-c": {}, "-config": {},
}

func filePaths(args []string) []string {
	var paths []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if _, ok := valueFlags[arg]; ok {
			i++ // skip the flag's value
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		paths = append(paths, arg)
	}
	return paths
}

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ok, err := app.Run(context.Background(), filePaths(os.Args[1:]))
	if err != nil {
		log.Fatalf("%v", err)
	}
	if !ok {
		os.Exit(1)
	}
}
