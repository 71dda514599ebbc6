package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"rsc.io/getopt"

	"golang.org/x/term"

	"github.com/libcaf/huffman"
)

var (
	// Flags

	decompress = flag.Bool("decompress", false, "specify to decompress")
	keep       = flag.Bool("keep", false, "keep (don't delete) input file")
	toStdout   = flag.Bool("stdout", false, "write to stdout; implies -k")
	force      = flag.Bool("force", false, "overwrite output")
	verbose    = flag.Bool("verbose", false, "log histogram/encode diagnostics to stderr")
	workers    = flag.Int("workers", 0, "parallel workers to use (0 = runtime.NumCPU())")

	// State
	inPath  string
	outPath string
)

const extension = ".huff"

func codec() *huffman.FileCodec {
	c := &huffman.FileCodec{
		Cache:   huffman.NewDictCache(16),
		Workers: *workers,
	}
	if *verbose {
		c.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return c
}

func do() int {
	if len(flag.Args()) > 1 {
		fmt.Fprintf(os.Stderr, "too many arguments\n")
		return 2
	}

	if len(flag.Args()) == 0 {
		fmt.Fprintf(os.Stderr, "huff: reading from stdin is not supported, pass a file path\n")
		return 2
	}
	inPath = flag.Args()[0]

	if _, err := os.Stat(inPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
		return 1
	}

	if *toStdout {
		outPath = ""
	} else if *decompress {
		if strings.HasSuffix(inPath, extension) {
			outPath = inPath[:len(inPath)-len(extension)]
		} else {
			outPath = inPath + ".out"
			fmt.Fprintf(os.Stderr, "%s: unknown extension, writing to %s\n", inPath, outPath)
		}
	} else {
		outPath = inPath + extension
	}

	if outPath != "" {
		if _, err := os.Stat(outPath); !*force && err == nil {
			fmt.Fprintf(os.Stderr, "%s: already exists\n", outPath)
			return 11
		}
	} else if !*decompress {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintf(os.Stderr, "huff: I'm not writing compressed data to stdout\n")
			return 13
		}
	}

	c := codec()

	var code int
	if *decompress {
		code = runDecompress(c)
	} else {
		code = runCompress(c)
	}

	if code == 0 && !*keep && !*toStdout {
		if err := os.Remove(inPath); err != nil {
			fmt.Fprintf(os.Stderr, "%s: unlink: %v\n", inPath, err)
			return 2
		}
	}

	return code
}

func runCompress(c *huffman.FileCodec) int {
	target := outPath
	tmp := target
	usingStdout := target == ""
	if usingStdout {
		var err error
		tmp, err = stdoutTempPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 4
		}
		defer os.Remove(tmp)
	}

	n, err := c.EncodeFile(inPath, tmp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
		return 7
	}

	if usingStdout {
		if err := copyFileToStdout(tmp); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 10
		}
		return 0
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "%s: wrote %d bytes\n", outPath, n)
	}
	return 0
}

func runDecompress(c *huffman.FileCodec) int {
	target := outPath
	tmp := target
	usingStdout := target == ""
	if usingStdout {
		var err error
		tmp, err = stdoutTempPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 4
		}
		defer os.Remove(tmp)
	}

	if err := c.DecodeFile(inPath, tmp); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
		return 9
	}

	if usingStdout {
		if err := copyFileToStdout(tmp); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 10
		}
	}
	return 0
}

func stdoutTempPath() (string, error) {
	f, err := os.CreateTemp("", "huff-*")
	if err != nil {
		return "", err
	}
	path := f.Name()
	f.Close()
	return path, nil
}

func copyFileToStdout(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func main() {
	getopt.Alias("d", "decompress")
	getopt.Alias("k", "keep")
	getopt.Alias("c", "stdout")
	getopt.Alias("f", "force")
	getopt.Alias("v", "verbose")

	// Work around https://github.com/rsc/getopt/issues/3
	if err := getopt.CommandLine.Parse(os.Args[1:]); err != nil {
		os.Exit(12)
	}

	os.Exit(do())
}
