package report

import (
	"log"

	"github.com/rollbar/rollbar-go"
)

// Reporter 后台任务错误上报接口
// 任务失败不影响其他任务，错误统一走这里出去，不靠翻日志发现问题
type Reporter interface {
	Report(err error, context map[string]interface{})
}

// ==================== Rollbar 实现 ====================

type rollbarReporter struct{}

// NewRollbarReporter 创建 Rollbar 上报器，令牌为空时退化为日志上报
func NewRollbarReporter(token, env string) Reporter {
	if token == "" {
		log.Printf("[Report] 未配置 Rollbar 令牌，错误仅输出到日志")
		return NewLogReporter()
	}

	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	return &rollbarReporter{}
}

func (r *rollbarReporter) Report(err error, context map[string]interface{}) {
	if err == nil {
		return
	}

	// 上报本身不能把任务搞挂
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Report] 上报时发生 panic: %v（原错误: %v）", rec, err)
		}
	}()

	log.Printf("[Report] %v context=%v", err, context)
	rollbar.ErrorWithExtras(rollbar.ERR, err, context)
}

// ==================== 日志实现 ====================

type logReporter struct{}

// NewLogReporter 创建仅输出日志的上报器，测试和本地开发用
func NewLogReporter() Reporter {
	return &logReporter{}
}

func (r *logReporter) Report(err error, context map[string]interface{}) {
	if err == nil {
		return
	}
	log.Printf("[Report] %v context=%v", err, context)
}
