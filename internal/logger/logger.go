// Package logger 日志初始化
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pu-ac-cn/rbac-backend/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New 根据配置创建 zap 日志实例
func New(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(defaultString(cfg.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.MessageKey = "msg"

	var encoder zapcore.Encoder
	switch strings.ToLower(defaultString(cfg.Format, "json")) {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case "console":
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("不支持的日志格式: %s", cfg.Format)
	}

	sink, err := newSink(cfg, level)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, sink, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller()), nil
}

// newSink 创建日志输出目标，文件输出使用 lumberjack 轮转
func newSink(cfg *config.LogConfig, level zapcore.Level) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(defaultString(cfg.Output, "stdout")) {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("日志输出为 file 时必须指定 file_path")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}
		rotator := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		// 调试级别同时输出到控制台
		if level == zapcore.DebugLevel {
			return zapcore.NewMultiWriteSyncer(zapcore.Lock(os.Stdout), rotator), nil
		}
		return rotator, nil
	default:
		return nil, fmt.Errorf("不支持的日志输出: %s", cfg.Output)
	}
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
