package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	if name := strings.ToLower(strings.TrimSpace(db.Dialector.Name())); name != "" {
		return name
	}
	return "sqlite"
}

// containsCondition 多列模糊匹配（任一列包含 keyword），postgres 下不区分大小写。
// keyword 中的 % 与 _ 按字面匹配。
func containsCondition(db *gorm.DB, keyword string, columns ...string) (string, []interface{}) {
	return containsConditionByDialect(dbDialectName(db), keyword, columns...)
}

func containsConditionByDialect(dialect, keyword string, columns ...string) (string, []interface{}) {
	operator := "LIKE"
	if dialect == "postgres" || dialect == "postgresql" {
		operator = "ILIKE"
	}
	pattern := "%" + likeEscaper.Replace(keyword) + "%"

	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf(`%s %s ? ESCAPE '\'`, column, operator))
		args = append(args, pattern)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
