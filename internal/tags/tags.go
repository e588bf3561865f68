package tags

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/velatra/photofolio/database/models"
	"github.com/velatra/photofolio/database/repo/tags"
)

// Service 标签协调服务
// 并发上传同名标签时通过 singleflight 合并 upsert，避免唯一约束竞争
type Service struct {
	repo  *tags.Repository
	group singleflight.Group
}

// NewService 创建标签服务
func NewService(repo *tags.Repository) *Service {
	return &Service{repo: repo}
}

// ParseList 把逗号分隔的标签串解析为去重后的有序列表
// 空片段丢弃，两端空白去除，首次出现的位置决定顺序
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Reconcile 确保每个名字都有对应的 Tag 行并返回其模型
// 已存在的名字复用现有行，新名字创建；同名并发请求只会落库一次
func (s *Service) Reconcile(names []string) ([]*models.Tag, error) {
	result := make([]*models.Tag, 0, len(names))
	for _, name := range names {
		tag, err := s.upsertOne(name)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile tag '%s': %w", name, err)
		}
		result = append(result, tag)
	}
	return result, nil
}

func (s *Service) upsertOne(name string) (*models.Tag, error) {
	v, err, _ := s.group.Do(name, func() (interface{}, error) {
		return s.repo.Upsert(name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Tag), nil
}

// ListAll 返回全部标签名，按字典序
func (s *Service) ListAll() ([]string, error) {
	all, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for _, t := range all {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names, nil
}
