package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	gitignore "github.com/monochromegane/go-gitignore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Splitting budgets
	maxLines int
	maxDepth int

	// Digest generation
	excludePatterns []string
	includePatterns []string
	maxSizeBytes    int64
	branchName      string
	gitingestBin    string
	noIgnore        bool

	// Output
	digestDirFlag   string
	pdfOutputFile   string
	copyToClipboard bool

	// Token counting
	disableTokens  bool
	tokenizerType  string
	tokenizerModel string
	tokenizerFile  string
	numThreads     int

	// Modes
	interactiveMode bool
	watchMode       bool
)

// version is the application version, set via ldflags.
var version string = "dev"

var rootCmd = &cobra.Command{
	Use:   "gitingest-splitter [REPO]",
	Short: "Split oversized gitingest digests into per-directory files.",
	Long: `gitingest-splitter runs gitingest over a repository and, whenever a
directory's digest exceeds the line budget, replaces it with a local-files
digest plus one digest per subdirectory, recursing up to a depth limit.
An index file maps every digest back to its directory.`,
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSplit,
}

func runSplit(cmd *cobra.Command, args []string) error {
	// Determine the input: interactive pick or command-line argument.
	var input string
	switch {
	case interactiveMode:
		picked, err := pickRepositoryDir()
		if err != nil {
			return err
		}
		if picked == "" {
			return nil // user aborted the picker
		}
		input = picked
	case len(args) == 1:
		input = args[0]
	default:
		return &InputError{Msg: "missing repository path or URL (or use --interactive)"}
	}

	// Resolve the input to a local repository root.
	var rootPath, rootName, defaultDigestDir string
	if isGitURL(input) {
		if watchMode {
			return &InputError{Path: input, Msg: "--watch needs a local repository path"}
		}
		tempDir, err := cloneGitRepo(input, branchName)
		if err != nil {
			return err
		}
		defer func() {
			fmt.Printf("Cleaning up temporary directory: %s\n", tempDir)
			_ = os.RemoveAll(tempDir)
		}()
		rootPath = tempDir
		rootName = repoNameFromURL(input)
		// Clones live in a throwaway temp dir, so default next to the caller.
		defaultDigestDir = rootName + "-digest"
	} else {
		abs, err := filepath.Abs(input)
		if err != nil {
			return &InputError{Path: input, Msg: "cannot resolve path", Cause: err}
		}
		info, err := os.Stat(abs)
		if err != nil {
			return &InputError{Path: abs, Msg: "repository is not readable", Cause: err}
		}
		if !info.IsDir() {
			return &InputError{Path: abs, Msg: "repository must be a directory"}
		}
		rootPath = abs
		rootName = filepath.Base(abs)
		defaultDigestDir = filepath.Join(filepath.Dir(abs), rootName+"-digest")
	}

	if maxLines <= 0 {
		return &InputError{Path: rootPath, Msg: fmt.Sprintf("--max-lines must be positive, got %d", maxLines)}
	}
	if maxDepth < 0 {
		return &InputError{Path: rootPath, Msg: fmt.Sprintf("--max-depth must not be negative, got %d", maxDepth)}
	}

	digestDir := digestDirFlag
	if digestDir == "" {
		digestDir = defaultDigestDir
	}
	digestDir, err := filepath.Abs(digestDir)
	if err != nil {
		return &InputError{Path: digestDir, Msg: "cannot resolve digest directory", Cause: err}
	}
	if digestDir == rootPath {
		return &InputError{Path: digestDir, Msg: "digest directory must not be the repository root"}
	}
	if err := os.MkdirAll(digestDir, 0o755); err != nil {
		return &OutputError{Path: digestDir, Msg: "cannot create digest directory", Cause: err}
	}

	// A digest directory nested inside the repository would feed earlier
	// digests back into later runs, so exclude its subtree.
	excludes := excludePatterns
	if rel, relErr := filepath.Rel(rootPath, digestDir); relErr == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		seg := strings.Split(rel, string(os.PathSeparator))[0]
		fmt.Fprintf(os.Stderr, "Warning: digest directory %s is inside the repository, excluding '%s' from digests\n", digestDir, seg)
		excludes = append(append([]string(nil), excludes...), seg, seg+"/**")
	}

	gen, err := newGitingestGenerator(gitingestBin, includePatterns, maxSizeBytes, branchName)
	if err != nil {
		return err
	}

	var tokenizer Tokenizer
	if !disableTokens {
		tokenizer, err = getTokenizer(tokenizerType, tokenizerModel, tokenizerFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing tokenizer: %v\n", err)
			fmt.Fprintln(os.Stderr, "Token counting disabled due to error.")
		} else {
			defer tokenizer.Close()
		}
	}

	fmt.Printf("Repository: %s\n", rootPath)
	fmt.Printf("Digest directory: %s\n", digestDir)
	fmt.Printf("Max lines per digest: %d\n", maxLines)
	fmt.Printf("Max recursion depth: %d\n", maxDepth)
	if len(excludes) > 0 {
		fmt.Printf("Exclude patterns: %s\n", strings.Join(excludes, ", "))
	}
	if len(includePatterns) > 0 {
		fmt.Printf("Include patterns: %s\n", strings.Join(includePatterns, ", "))
	}
	fmt.Println()

	if err := splitOnce(gen, rootPath, rootName, digestDir, excludes, tokenizer); err != nil {
		return err
	}

	if watchMode {
		var runMu sync.Mutex
		watcher, err := newRepoWatcher(rootPath, digestDir, excludes, func() {
			runMu.Lock()
			defer runMu.Unlock()
			fmt.Println("\nChange detected, re-splitting...")
			if err := splitOnce(gen, rootPath, rootName, digestDir, excludes, tokenizer); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
			}
		})
		if err != nil {
			return &InputError{Path: rootPath, Msg: "cannot watch repository", Cause: err}
		}
		defer watcher.Close()
		fmt.Printf("\nWatching %s for changes (Ctrl-C to stop)...\n", rootPath)
		return watcher.Run()
	}
	return nil
}

// splitOnce performs one full split of the repository and writes every
// configured output: digest files, text index, YAML manifest, and optionally
// clipboard and PDF exports.
func splitOnce(gen Generator, rootPath, rootName, digestDir string, excludes []string, tokenizer Tokenizer) error {
	var matcher gitignore.IgnoreMatcher
	if !noIgnore {
		// Reloaded on every run so watch mode picks up .gitignore edits.
		gitIgnorePath := filepath.Join(rootPath, ".gitignore")
		if _, err := os.Stat(gitIgnorePath); err == nil {
			m, err := gitignore.NewGitIgnore(gitIgnorePath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: cannot parse %s: %v\n", gitIgnorePath, err)
			} else {
				matcher = m
			}
		}
	}

	splitter := &Splitter{
		Generator: gen,
		RootPath:  rootPath,
		RootName:  rootName,
		DigestDir: digestDir,
		MaxLines:  maxLines,
		MaxDepth:  maxDepth,
		Excludes:  excludes,
		Ignore:    matcher,
	}
	indexEntries, err := splitter.Run()
	if err != nil {
		return err
	}

	if tokenizer != nil {
		countDigestTokens(tokenizer, digestDir, indexEntries, numThreads)
	}

	indexPath := filepath.Join(digestDir, indexFileName(rootName))
	indexText, err := writeIndex(indexPath, rootPath, maxLines, maxDepth, indexEntries, tokenizer != nil)
	if err != nil {
		return err
	}
	manifestPath := filepath.Join(digestDir, manifestFileName(rootName))
	if err := writeManifest(manifestPath, rootPath, maxLines, maxDepth, indexEntries); err != nil {
		return err
	}

	summary := summarize(indexEntries)
	fmt.Println()
	fmt.Print(renderSplitTree(buildSplitTree(rootName, indexEntries)))
	fmt.Println("\n--- Summary ---")
	fmt.Printf("Digests written: %d\n", summary.Digests)
	fmt.Printf("Total lines: %d\n", summary.TotalLines)
	if tokenizer != nil && summary.TotalTokens > 0 {
		fmt.Printf("Total tokens: ~%d\n", summary.TotalTokens)
	}
	fmt.Printf("Index: %s\n", indexPath)

	if copyToClipboard {
		if err := clipboard.WriteAll(indexText); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to clipboard: %v\n", err)
		} else {
			fmt.Println("Index copied to clipboard.")
		}
	}
	if pdfOutputFile != "" {
		if err := writeIndexPDF(pdfOutputFile, rootPath, maxLines, maxDepth, indexEntries, summary, tokenizer != nil); err != nil {
			return err
		}
		fmt.Printf("Saved PDF report to %s\n", pdfOutputFile)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	// --- Flag Definitions & Viper Binding ---

	// Splitting budgets
	rootCmd.Flags().IntVar(&maxLines, "max-lines", 20000, "Maximum lines in a digest before it is split")
	viper.BindPFlag("max_lines", rootCmd.Flags().Lookup("max-lines"))
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", 1, "Maximum recursion depth for splitting")
	viper.BindPFlag("max_depth", rootCmd.Flags().Lookup("max-depth"))

	// Digest generation
	rootCmd.Flags().StringArrayVarP(&excludePatterns, "exclude", "e", nil, "Pattern to exclude (repeatable)")
	viper.BindPFlag("default_excludes", rootCmd.Flags().Lookup("exclude"))
	rootCmd.Flags().StringArrayVarP(&includePatterns, "include", "i", nil, "Pattern to include (repeatable)")
	rootCmd.Flags().Int64VarP(&maxSizeBytes, "max-size", "s", 0, "Maximum file size in bytes to digest (0 for gitingest's default)")
	viper.BindPFlag("max_size", rootCmd.Flags().Lookup("max-size"))
	rootCmd.Flags().StringVarP(&branchName, "branch", "b", "", "Branch to clone and digest")
	rootCmd.Flags().StringVar(&gitingestBin, "gitingest-bin", "gitingest", "Name or path of the gitingest executable")
	viper.BindPFlag("gitingest_bin", rootCmd.Flags().Lookup("gitingest-bin"))
	rootCmd.Flags().BoolVar(&noIgnore, "no-ignore", false, "Recurse into gitignored directories too")
	viper.BindPFlag("no_ignore", rootCmd.Flags().Lookup("no-ignore"))

	// Output
	rootCmd.Flags().StringVar(&digestDirFlag, "digest-dir", "", "Directory for digest files (default: <repo>-digest next to the repo)")
	rootCmd.Flags().StringVar(&pdfOutputFile, "pdf", "", "Also save the index report as PDF")
	rootCmd.Flags().BoolVarP(&copyToClipboard, "clipboard", "c", false, "Copy the index to the clipboard")

	// Token counting
	rootCmd.Flags().BoolVar(&disableTokens, "no-tokens", false, "Disable token counting")
	viper.BindPFlag("no_tokens", rootCmd.Flags().Lookup("no-tokens"))
	rootCmd.Flags().StringVar(&tokenizerType, "tokenizer", "tiktoken", "Tokenizer to use: tiktoken or huggingface")
	viper.BindPFlag("default_tokenizer", rootCmd.Flags().Lookup("tokenizer"))
	rootCmd.Flags().StringVar(&tokenizerModel, "model", "", "Model name for tokenizer (e.g., gpt-4o, gpt2)")
	viper.BindPFlag("default_tokenizer_model", rootCmd.Flags().Lookup("model"))
	rootCmd.Flags().StringVar(&tokenizerFile, "tokenizer-file", "", "Path to local tokenizer file")
	rootCmd.Flags().IntVarP(&numThreads, "threads", "t", 0, "Number of threads for token counting (0 for auto)")
	viper.BindPFlag("threads", rootCmd.Flags().Lookup("threads"))

	// Modes
	rootCmd.Flags().BoolVar(&interactiveMode, "interactive", false, "Pick the repository with a fuzzy finder")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "Stay running and re-split when repository files change")

	viper.SetDefault("max_lines", 20000)
	viper.SetDefault("max_depth", 1)
	viper.SetDefault("max_size", 0)
	viper.SetDefault("default_excludes", []string{})
	viper.SetDefault("gitingest_bin", "gitingest")
	viper.SetDefault("no_ignore", false)
	viper.SetDefault("no_tokens", false)
	viper.SetDefault("default_tokenizer", "tiktoken")
	viper.SetDefault("default_tokenizer_model", "")
	viper.SetDefault("threads", 0)
}

// initConfig reads in the config file and GITINGEST_SPLITTER_* environment
// variables if set.
func initConfig() {
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "gitingest-splitter"))
	}
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.SetEnvPrefix("GITINGEST_SPLITTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
	}

	// BindPFlag makes viper prefer a changed flag, but it never writes back
	// into the flag variables, so sync the ones read directly.
	if !rootCmd.Flags().Changed("exclude") {
		excludePatterns = viper.GetStringSlice("default_excludes")
	}
	if !rootCmd.Flags().Changed("max-lines") {
		maxLines = viper.GetInt("max_lines")
	}
	if !rootCmd.Flags().Changed("max-depth") {
		maxDepth = viper.GetInt("max_depth")
	}
	if !rootCmd.Flags().Changed("max-size") {
		maxSizeBytes = viper.GetInt64("max_size")
	}
	if !rootCmd.Flags().Changed("gitingest-bin") {
		gitingestBin = viper.GetString("gitingest_bin")
	}
	if !rootCmd.Flags().Changed("no-ignore") {
		noIgnore = viper.GetBool("no_ignore")
	}
	if !rootCmd.Flags().Changed("no-tokens") {
		disableTokens = viper.GetBool("no_tokens")
	}
	if !rootCmd.Flags().Changed("tokenizer") {
		tokenizerType = viper.GetString("default_tokenizer")
	}
	if !rootCmd.Flags().Changed("model") {
		tokenizerModel = viper.GetString("default_tokenizer_model")
	}
	if !rootCmd.Flags().Changed("threads") {
		numThreads = viper.GetInt("threads")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		// A gitingest failure surfaces its own exit code.
		var genErr *GenerationError
		if errors.As(err, &genErr) && genErr.ExitCode > 0 {
			os.Exit(genErr.ExitCode)
		}
		os.Exit(1)
	}
}
