package ingest

import "fmt"

// ValidationError 请求在任何 I/O 之前被拒绝
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// DerivativeError 缩略图派生失败，对该文件的摄取是致命的
type DerivativeError struct {
	Err error
}

func (e *DerivativeError) Error() string {
	return "thumbnail derivation failed: " + e.Err.Error()
}

func (e *DerivativeError) Unwrap() error { return e.Err }

// StorageError 对象存储读写失败
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for '%s': %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError 元数据落库失败
// 注意 EXIF 提取失败不属于错误分类：提取失败被吸收为空元数据
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
