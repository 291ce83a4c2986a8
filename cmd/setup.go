package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"vid2mp3/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

All settings have working defaults, so setup only asks about the
few values worth changing: output location, bitrate, transcription
and Google Drive upload.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, config.DefaultPath)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to vid2mp3 setup!")
	fmt.Println()

	cfg := config.Default()

	if err := promptOutput(prompter, cfg); err != nil {
		return err
	}
	if err := promptAudio(prompter, cfg); err != nil {
		return err
	}
	if err := promptTranscription(prompter, cfg); err != nil {
		return err
	}
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

func promptOutput(prompter Prompter, cfg *config.Config) error {
	output, err := prompter.Input("Where should converted files go?", cfg.Paths.OutputDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if output != "" {
		cfg.Paths.OutputDirectory = output
	}
	return nil
}

func promptAudio(prompter Prompter, cfg *config.Config) error {
	bitrate, err := prompter.Input("MP3 bitrate?", cfg.Audio.Bitrate)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if bitrate != "" {
		cfg.Audio.Bitrate = bitrate
	}

	tag, err := prompter.Confirm("Write ID3 tags onto converted files?", cfg.Audio.Tag)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Audio.Tag = tag

	return nil
}

func promptTranscription(prompter Prompter, cfg *config.Config) error {
	enable, err := prompter.Confirm("Enable transcription (needs an OpenRouter API key)?", !cfg.Transcription.Disabled)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Transcription.Disabled = !enable
	if !enable {
		return nil
	}

	model, err := prompter.Input("Transcription model?", cfg.Transcription.Model)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if model != "" {
		cfg.Transcription.Model = model
	}

	concurrency, err := prompter.Input("Chunks transcribed in parallel?", strconv.Itoa(cfg.Transcription.Concurrency))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if n, err := strconv.Atoi(concurrency); err == nil && n > 0 {
		cfg.Transcription.Concurrency = n
	}

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	upload, err := prompter.Confirm("Configure Google Drive upload?", cfg.Google.FolderID != "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !upload {
		return nil
	}

	credentials, err := prompter.Input("Path to Google credentials file?", "credentials.json")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials == "" {
		credentials = "credentials.json"
	}
	cfg.Google.CredentialsFile = credentials

	folder, err := prompter.Input("Google Drive folder ID?", cfg.Google.FolderID)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if folder == "" {
		return fmt.Errorf("folder ID is required")
	}
	cfg.Google.FolderID = folder

	return nil
}
