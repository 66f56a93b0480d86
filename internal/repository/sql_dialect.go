package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// itemSearchJSONKeys 礼物信息中参与模糊搜索的键
var itemSearchJSONKeys = []string{"name", "description", "category"}

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// jsonTextExpr 构建 JSON 字段文本提取表达式，兼容 sqlite 与 postgres。
func jsonTextExpr(db *gorm.DB, column, key string) string {
	return jsonTextExprByDialect(dbDialectName(db), column, key)
}

func jsonTextExprByDialect(dialect, column, key string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		// postgres 统一转 jsonb 后再使用 ->> 提取文本
		return fmt.Sprintf("(%s::jsonb ->> '%s')", column, key)
	default:
		// sqlite 使用 json_extract，键使用引号避免特殊字符问题
		return fmt.Sprintf("json_extract(%s, '$.\"%s\"')", column, key)
	}
}

// jsonNumberExpr 构建 JSON 字段数值提取表达式，兼容 sqlite 与 postgres。
func jsonNumberExpr(db *gorm.DB, column, key string) string {
	switch dbDialectName(db) {
	case "postgres", "postgresql":
		return fmt.Sprintf("(%s::jsonb ->> '%s')::numeric", column, key)
	default:
		return fmt.Sprintf("CAST(json_extract(%s, '$.\"%s\"') AS REAL)", column, key)
	}
}

// buildItemSearchCondition 构建普通列 + 礼物信息 JSON 列的 LIKE 条件，并返回参数数量。
func buildItemSearchCondition(db *gorm.DB, plainColumns []string) (string, int) {
	return buildItemSearchConditionByDialect(dbDialectName(db), plainColumns)
}

func buildItemSearchConditionByDialect(dialect string, plainColumns []string) (string, int) {
	parts := make([]string, 0, len(plainColumns)+len(itemSearchJSONKeys))
	argCount := 0
	operator := likeOperatorByDialect(dialect)

	for _, column := range plainColumns {
		trimmed := strings.TrimSpace(column)
		if trimmed == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", trimmed, operator))
		argCount++
	}

	for _, key := range itemSearchJSONKeys {
		parts = append(parts, fmt.Sprintf("%s %s ?", jsonTextExprByDialect(dialect, "item_details", key), operator))
		argCount++
	}

	return strings.Join(parts, " OR "), argCount
}

func likeOperatorByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// repeatLikeArgs 生成重复的 LIKE 参数列表。
func repeatLikeArgs(like string, count int) []interface{} {
	args := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		args = append(args, like)
	}
	return args
}
