package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config 로그 설정
type Config struct {
	Level      string // debug, info, warn, error
	OutputFile string // 비어 있으면 콘솔만 출력
	MaxSize    int    // 로그 파일 최대 크기 (MB)
	MaxBackups int    // 보관할 이전 로그 파일 수
	MaxAge     int    // 보관 일수
	Compress   bool
}

// New는 설정에 따라 logrus 로거를 생성합니다
func New(cfg Config) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "06-01-02 15:04:05",
	})

	writers := []io.Writer{os.Stdout}
	if cfg.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
			return nil, err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.OutputFile,
			MaxSize:    withDefault(cfg.MaxSize, 100),
			MaxBackups: withDefault(cfg.MaxBackups, 10),
			MaxAge:     withDefault(cfg.MaxAge, 30),
			Compress:   cfg.Compress,
		})
	}
	log.SetOutput(io.MultiWriter(writers...))

	return log, nil
}

// Discard는 테스트용으로 아무것도 출력하지 않는 로거를 반환합니다
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Mask는 API 키 같은 자격 증명을 앞 4자리만 남기고 가립니다
func Mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

func withDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
