package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/omnihive/backend/internal/application/appctx"
	"github.com/omnihive/backend/internal/application/services"
	"github.com/omnihive/backend/internal/bootstrap"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/internal/infrastructure/config"
	"github.com/omnihive/backend/internal/infrastructure/logging"
	"github.com/omnihive/backend/pkg/constants"
)

var (
	taskName string
	taskArgs string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Run a task worker once and exit",
	Example: `  hive task --name nightlyCleanup
  hive task --name nightlyCleanup --args cleanup.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd.Context())
	},
}

func init() {
	taskCmd.Flags().StringVar(&taskName, "name", "", "Name of the task worker to run")
	taskCmd.Flags().StringVar(&taskArgs, "args", "", "JSON or YAML file with the task arguments")
	_ = taskCmd.MarkFlagRequired("name")
}

// readTaskArgs decodes an args file. YAML is a superset of JSON, so one
// decoder serves both.
func readTaskArgs(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task args: %w", err)
	}
	args := map[string]any{}
	if err := yaml.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("task args must be a JSON or YAML object: %w", err)
	}
	return args, nil
}

func runTask(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{Level: rt.LogLevel, LogDir: rt.LogDir}, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	args, err := readTaskArgs(taskArgs)
	if err != nil {
		return err
	}

	settings, err := bootstrap.SettingsLoader(config.NewFileWorker(rt.SettingsFile), rt)(ctx)
	if err != nil {
		return err
	}
	app := appctx.New(logger)
	reg, err := bootstrap.NewFactory(rt, app, logger).Build(ctx, settings)
	if err != nil {
		return err
	}
	app.Publish(appctx.NewSnapshot(reg, settings, nil, nil))
	defer func() {
		for _, c := range reg.Capabilities() {
			if closer, ok := c.Instance.(ports.Closer); ok {
				_ = closer.Close()
			}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(constants.TaskMaxRuntimeMins)*time.Minute)
	defer cancel()

	started := time.Now()
	logger.WithField("task", taskName).Info("▶️ Running task")
	out, err := services.RunTask(ctx, reg, taskName, args)
	if err != nil {
		return fmt.Errorf("task %s failed: %w", taskName, err)
	}
	logger.WithField("task", taskName).WithField("duration", time.Since(started).String()).Info("✅ Task finished")

	if out != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return nil
}
