package models

import "time"

type RunStatus string

const (
	// 表示正在运行
	StatusRunning RunStatus = "running"
	// 表示未运行或程序主动退出
	StatusExited RunStatus = "exited"
	// 表示启动失败或异常退出
	StatusError RunStatus = "error"
	// 表示被用户通过stop命令停止
	StatusStopped RunStatus = "stopped"
)

type RunnerDetail struct {
	Title          string    `json:"title"`          //显示用的名字
	Command        string    `json:"command"`        //进程启动命令
	Args           []string  `json:"args"`           //进程参数
	WorkDir        string    `json:"workDir"`        //工作目录
	JvmArguments   string    `json:"jvmArguments"`   //配置的JVM参数
	Pid            int       `json:"pid"`            //进程PID
	Status         RunStatus `json:"status"`         //状态
	LogLimit       int       `json:"logLimit"`       //日志缓存的最大行数
	LogLines       int       `json:"logLines"`       //当前缓存的日志行数
	StartTime      time.Time `json:"startTime"`      //启动时间
	LastExitTime   time.Time `json:"lastExitTime"`   //最后一次退出的时间
	LastExitReason string    `json:"lastExitReason"` //最后一次退出的原因
}
