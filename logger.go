package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

var logFile *os.File

// SetupLogger 日志写到 logPath，文件打不开时写到标准错误
func SetupLogger(logPath string, level string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logrus.SetLevel(lvl)
	} else {
		logrus.Warnf("[Logger] unknown log level %q, use info", level)
		logrus.SetLevel(logrus.InfoLevel)
	}

	var output io.Writer = os.Stderr
	if logPath != "" {
		// 打开文件，追加写入
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			logrus.Warnf("[Logger] open log file fail, path = %s, err = %v", logPath, err)
		} else {
			logFile = file
			output = file
		}
	}
	logrus.SetOutput(output)

	// 终端中使用带颜色的文本格式，其他情况使用json
	if output == os.Stderr && term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

func CloseLogger() {
	if logFile != nil {
		_ = logFile.Close()
	}
}
