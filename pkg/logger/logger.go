package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	log  *zap.Logger
	once sync.Once

	serviceName = "signal_bot"
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

// Init строит логгер один раз; повторные вызовы — no-op.
func Init(debug bool) {
	once.Do(func() {
		var err error
		if debug {
			log, err = zap.NewDevelopment()
		} else {
			log, err = zap.NewProduction()
		}
		if err != nil {
			panic(err)
		}
	})
}

func get() *zap.Logger {
	if log == nil {
		Init(false)
	}
	return log.With(zap.String("service", serviceName))
}

func Debug(format string, args ...interface{}) {
	get().Debug(fmt.Sprintf(format, args...))
}

func Info(format string, args ...interface{}) {
	get().Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	get().Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	get().Error(fmt.Sprintf(format, args...))
}

// Fatal логирует и завершает процесс. Только для конфигурационных ошибок,
// при которых продолжать опасно (дубли ботов и т.п.).
func Fatal(format string, args ...interface{}) {
	get().Fatal(fmt.Sprintf(format, args...))
}
