package models

import "errors"

// 错误分类，各模块用 fmt.Errorf("...: %w", ErrXxx) 包装后返回，调用方用 errors.Is 判断
var (
	// 属性键未知，或属性值没有通过校验
	ErrValidation = errors.New("property does not exist or is malformed")
	// 版本号/实例名不存在
	ErrNotFound = errors.New("not found")
	// 实例目录已存在
	ErrAlreadyExists = errors.New("already exists")
	// 下载文件的散列值与清单声明的不一致
	ErrIntegrityMismatch = errors.New("checksum mismatch")
	// 获取清单、版本详情或下载文件时的网络错误
	ErrTransport = errors.New("transport failure")
	// 启动命令无法执行
	ErrProcessSpawn = errors.New("process spawn failure")
	// 实例正在运行，不允许执行该操作
	ErrServerRunning = errors.New("server is running")
	// 实例没有运行，无法接收命令
	ErrServerStopped = errors.New("server is not running")
)
