package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bugsnag/panicwrap"
	"github.com/davecgh/go-spew/spew"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/seventv/GifBuilder/src/configure"
	"github.com/seventv/GifBuilder/src/global"
	"github.com/seventv/GifBuilder/src/job"
	"github.com/seventv/GifBuilder/src/palette"
	"github.com/seventv/GifBuilder/src/task"
)

var (
	Version = "development"
	Unix    = ""
	Time    = "unknown"
	User    = "unknown"
)

func init() {
	if i, err := strconv.Atoi(Unix); err == nil {
		Time = time.Unix(int64(i), 0).Format(time.RFC3339)
	}
}

func main() {
	config := configure.New()

	exitStatus, err := panicwrap.BasicWrap(func(s string) {
		logrus.Error(s)
	})
	if err != nil {
		logrus.Error("failed to setup panic handler: ", err)
		os.Exit(2)
	}

	if exitStatus >= 0 {
		os.Exit(exitStatus)
	}

	if !config.NoHeader {
		logrus.Info("7TV GIF Builder")
		logrus.Infof("Version: %s", Version)
		logrus.Infof("build.Time: %s", Time)
		logrus.Infof("build.User: %s", User)
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debug("config: ", spew.Sdump(config))
	}

	c, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctx := global.New(c, config)

	files, err := run(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("build failed")
	}

	for _, f := range files {
		logrus.WithFields(logrus.Fields{
			"frames":    f.Frames,
			"size":      f.Size,
			"durations": f.Durations,
		}).Infof("wrote %s", f.Path)
	}
}

func run(ctx global.Context) ([]job.File, error) {
	cfg := ctx.Config()

	t := task.New(cfg.RootDir, job.FromConfig(cfg.Animations), palette.Options{
		Colors:      cfg.Palette.Colors,
		ThumbWidth:  cfg.Palette.ThumbWidth,
		ThumbHeight: cfg.Palette.ThumbHeight,
		Columns:     cfg.Palette.Columns,
	})

	t.OnEvent = func(e task.TaskEvent) {
		l := logrus.WithField("task", e.TaskID)
		if e.Animation != "" {
			l = l.WithField("animation", e.Animation)
		}
		switch e.Type {
		case task.Failed:
			l.Warn("task failed")
		case task.Started, task.Completed:
			l.Infof("task %s", e.Type)
		default:
			l.Debugf("%s: %s", e.Type.Stage(), e.Type)
		}
	}

	if !cfg.NoProgress && !cfg.NoLogs {
		t.Progress = progressbar.NewOptions(0,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	return t.Run(ctx)
}
