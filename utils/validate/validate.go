package validate

import (
	cErr "agentmarket/internal/pkg/error"
	"agentmarket/internal/pkg/request"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidationErrorResponse 逐欄列出 json 名稱、型別與 binding 規則
func ValidationErrorResponse(obj any, err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return "Validation error: " + err.Error()
	}
	var b strings.Builder
	b.WriteString("Validation error:\n")
	for _, fe := range errs {
		name, typ, rules := describeField(obj, fe.StructField())
		fmt.Fprintf(&b, " - Field \"%s\" (type: %s) failed the '%s' validation (rules: %v)\n", name, typ, fe.Tag(), rules)
	}
	return b.String()
}

func describeField(obj any, structField string) (name, typ string, rules []string) {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	f, ok := t.FieldByName(structField)
	if !ok {
		return structField, "", nil
	}
	name = structField
	if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
		name = tag
	}
	if tag := f.Tag.Get("binding"); tag != "" {
		rules = strings.Split(tag, ",")
	}
	return name, f.Type.String(), rules
}

func ParseObjectID(c *gin.Context, key string) (id primitive.ObjectID, cause error, responseErr error) {
	id, err := primitive.ObjectIDFromHex(c.Param(key))
	if err != nil {
		return primitive.NilObjectID, err, cErr.ValidatePathParamsErr("invalid " + key)
	}
	return id, nil, nil
}

func BindAndValidate(c *gin.Context, req any) (cause error, responseErr error) {
	if err := c.ShouldBindJSON(req); err != nil {
		return err, bindError(req, err)
	}
	return nil, nil
}

// Bind 依 Content-Type 綁定（JSON 或 form）
func Bind(c *gin.Context, req any) (cause error, responseErr error) {
	if err := c.ShouldBind(req); err != nil {
		return err, bindError(req, err)
	}
	return nil, nil
}

// BindQuery 綁定 query string
func BindQuery(c *gin.Context, req any) (cause error, responseErr error) {
	if err := c.ShouldBindQuery(req); err != nil {
		return err, bindError(req, err)
	}
	return nil, nil
}

func bindError(req any, err error) error {
	if _, ok := req.(request.Validator); ok {
		return request.GetError(req, err)
	}
	return cErr.ValidateErr(ValidationErrorResponse(req, err))
}

func GetInt64Query(c *gin.Context, key string, defaultVal int64) (int64, error) {
	if v := c.Query(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return n, nil
	}
	return defaultVal, nil
}

// NormalizeEmail 統一比對用的 email 格式
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Pagination 讀取 page/size（page 從 0 起算），size 限制在 1..maxSize
func Pagination(c *gin.Context, defaultSize, maxSize int64) (page, size int64, err error) {
	page, err = GetInt64Query(c, "page", 0)
	if err != nil || page < 0 {
		return 0, 0, cErr.BadRequestParams("invalid page")
	}
	size, err = GetInt64Query(c, "size", defaultSize)
	if err != nil || size <= 0 {
		return 0, 0, cErr.BadRequestParams("invalid size")
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size, nil
}
