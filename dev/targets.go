//go:build targ

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/cockroachdb/errors"
	"github.com/toejough/go-reorder"
	"github.com/toejough/targ"
	"github.com/toejough/targ/file"
	"github.com/toejough/targ/sh"
)

// Build builds the local swickgen binary.
func Build() error {
	fmt.Println("Building swickgen...")

	if err := os.MkdirAll("bin", 0o755); err != nil {
		return errors.Wrap(err, "failed to create bin directory")
	}

	return sh.Run("go", "build", "-o", "bin/swickgen", "./swickgen")
}

// Check runs all checks & fixes on the code, in order of correctness.
func Check() error {
	fmt.Println("Checking...")

	return targ.Deps(
		Tidy,          // clean up the module dependencies
		FixImports,    // fix imports before anything reads the code
		CheckCoverage, // does our code work?
		ReorderDecls,  // linter will yell about declaration order if not correct
		Lint,
	)
}

// CheckCoverage checks that function coverage meets the minimum threshold.
func CheckCoverage() error {
	const minimumCoverage = 80.0

	fmt.Println("Checking coverage...")

	if err := targ.Deps(Test); err != nil {
		return err
	}

	out, err := output("go", "tool", "cover", "-func=coverage.out")
	if err != nil {
		return err
	}

	percentPattern := regexp.MustCompile(`(\d+\.\d)%`)
	lowest := ""
	lowestPercent := 100.0

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "main.go") || strings.Contains(line, "total:") {
			continue
		}

		match := percentPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		percent, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return errors.Wrapf(err, "failed to parse coverage line %q", line)
		}

		if percent < lowestPercent {
			lowest, lowestPercent = line, percent
		}
	}

	if lowestPercent < minimumCoverage {
		return errors.Newf("function coverage below %.1f%%: %s", minimumCoverage, lowest)
	}

	fmt.Printf("Lowest function coverage: %.1f%%\n", lowestPercent)

	return nil
}

// FixImports fixes all imports in the codebase.
func FixImports() error {
	fmt.Println("Fixing imports...")
	return sh.Run("goimports", "-w", ".")
}

// Golden regenerates the testdata golden files from their inputs, showing what changed.
func Golden() error {
	fmt.Println("Regenerating golden files...")

	if err := targ.Deps(Build); err != nil {
		return err
	}

	inputs, err := globs(filepath.Join("swickgen", "run", "testdata"), []string{".yaml", ".go"})
	if err != nil {
		return errors.Wrap(err, "failed to find golden inputs")
	}

	for _, input := range inputs {
		golden := strings.TrimSuffix(input, filepath.Ext(input)) + ".swift"

		generated, err := output("bin/swickgen", input)
		if err != nil {
			return errors.Wrapf(err, "failed to generate %s", input)
		}

		// output trims the final newline the tool prints
		generated += "\n"

		current, err := os.ReadFile(golden)
		if err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to read %s", golden)
		}

		if string(current) == generated {
			continue
		}

		fmt.Println(textdiff.Unified(golden+" (current)", golden+" (generated)", string(current), generated))

		err = os.WriteFile(golden, []byte(generated), 0o600)
		if err != nil {
			return errors.Wrapf(err, "failed to write %s", golden)
		}
	}

	return nil
}

// Lint lints the codebase.
func Lint() error {
	fmt.Println("Linting...")
	return sh.Run("golangci-lint", "run", "--fix")
}

// Mutate runs the mutation tests.
func Mutate() error {
	fmt.Println("Running mutation tests...")

	if err := targ.Deps(TestForFail); err != nil {
		return err
	}

	return sh.Run(
		"go",
		"test",
		"-timeout=6000s",
		"-tags=mutation",
		"-ooze.v",
		"./dev/...",
		"-run=TestMutation",
	)
}

// ReorderDecls reorders declarations in Go files per conventions.
func ReorderDecls() error {
	fmt.Println("Reordering declarations...")

	reorderedCount := 0

	err := eachReorderable(func(path, content, reordered string) error {
		err := os.WriteFile(path, []byte(reordered), 0o600)
		if err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}

		fmt.Printf("  Reordered: %s\n", path)
		reorderedCount++

		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Reordered %d file(s).\n", reorderedCount)

	return nil
}

// ReorderDeclsCheck checks which files need reordering without modifying them.
func ReorderDeclsCheck() error {
	fmt.Println("Checking declaration order...")

	outOfOrderFiles := 0

	err := eachReorderable(func(path, content, reordered string) error {
		outOfOrderFiles++

		fmt.Printf("\n%s\n", textdiff.Unified(path+" (current)", path+" (reordered)", content, reordered))

		return nil
	})
	if err != nil {
		return err
	}

	if outOfOrderFiles > 0 {
		return errors.Newf("%d file(s) need reordering, run 'targ reorder-decls' to fix", outOfOrderFiles)
	}

	fmt.Println("All files are correctly ordered.")

	return nil
}

// Test runs the unit tests.
func Test() error {
	fmt.Println("Running unit tests...")

	return sh.Run(
		"go",
		"test",
		"-timeout=2m",
		"-race",
		"-count=1",
		"-coverprofile=coverage.out",
		"-coverpkg=./swickgen/...",
		"-cover",
		"./...",
	)
}

// TestForFail runs the unit tests purely to find out whether any fail.
func TestForFail() error {
	fmt.Println("Running unit tests for overall pass/fail...")

	return sh.Run(
		"go",
		"test",
		"-timeout=10s",
		"./...",
		"-failfast",
	)
}

// Tidy tidies up go.mod.
func Tidy() error {
	fmt.Println("Tidying go.mod...")
	return sh.Run("go", "mod", "tidy")
}

// Watch re-runs Check whenever files change.
func Watch(ctx context.Context) error {
	fmt.Println("Watching...")

	patterns := []string{"**/*.go", "**/*.yaml", "**/*.swift", "**/*.toml"}

	return file.Watch(ctx, patterns, file.WatchOptions{}, func(changes file.ChangeSet) error {
		if !hasRelevantChanges(changes) {
			return nil
		}

		fmt.Println("Change detected...")

		targ.ResetDeps() // Clear execution cache so targets run again

		err := Check()
		if err != nil {
			fmt.Println("continuing to watch after check failure (see errors above)")
		} else {
			fmt.Println("continuing to watch after all checks passed!")
		}

		return nil // Don't stop watching on error
	})
}

// eachReorderable calls apply for every Go source file whose declarations are out of order.
func eachReorderable(apply func(path, content, reordered string) error) error {
	files, err := globs(".", []string{".go"})
	if err != nil {
		return errors.Wrap(err, "failed to find Go files")
	}

	for _, path := range files {
		// Skip the read-only reference pack and hidden directories
		if strings.HasPrefix(path, "_") || strings.Contains(path, "/.") || strings.Contains(path, "testdata") {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", path)
		}

		reordered, err := reorder.Source(string(content))
		if err != nil {
			fmt.Printf("Warning: failed to reorder %s: %v\n", path, err)

			continue
		}

		if string(content) == reordered {
			continue
		}

		err = apply(path, string(content), reordered)
		if err != nil {
			return err
		}
	}

	return nil
}

func globs(dir string, ext []string) ([]string, error) {
	files := []string{}

	err := filepath.Walk(dir, func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return errors.Wrap(err, "unable to find all glob matches")
		}

		for _, each := range ext {
			if filepath.Ext(path) == each {
				files = append(files, path)

				return nil
			}
		}

		return nil
	})

	return files, err
}

// hasRelevantChanges returns true if the changeset contains files we care about.
// Filters out build artifacts that Check() itself creates.
func hasRelevantChanges(changes file.ChangeSet) bool {
	allFiles := append(append(changes.Added, changes.Removed...), changes.Modified...)

	for _, path := range allFiles {
		if strings.HasPrefix(path, "bin/") || strings.HasSuffix(path, "coverage.out") {
			continue
		}

		return true
	}

	return false
}

// output runs a command and captures stdout only (stderr goes to os.Stderr).
func output(command string, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := exec.Command(command, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = buf
	cmd.Stderr = os.Stderr
	err := cmd.Run()

	return strings.TrimSuffix(buf.String(), "\n"), err
}
