package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/uplink/pkg/rule"
)

// TestStruct 用于测试 ValidateStruct.
type TestStruct struct {
	Name string `rule:"required"`
	Age  int    `rule:"gte=18"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	engine := rule.Engine()
	if engine == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效结构体的验证.
func TestValidateStruct(t *testing.T) {
	// 有效结构体
	validStruct := TestStruct{Name: "John", Age: 25}

	err := rule.ValidateStruct(validStruct)
	if err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 无效结构体：缺少 Name
	invalidStruct1 := TestStruct{Name: "", Age: 25}

	err = rule.ValidateStruct(invalidStruct1)
	if err == nil {
		t.Error("Expected error for invalid struct (missing name), got nil")
	}

	// 无效结构体：Age 小于 18
	invalidStruct2 := TestStruct{Name: "Jane", Age: 16}

	err = rule.ValidateStruct(invalidStruct2)
	if err == nil {
		t.Error("Expected error for invalid struct (age < 18), got nil")
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	// 有效 API Key
	err := rule.ValidateVar("storage-key-12345", "required,min=8")
	if err != nil {
		t.Errorf("Expected no error for valid key, got %v", err)
	}

	// 过短的 API Key
	err = rule.ValidateVar("short", "required,min=8")
	if err == nil {
		t.Error("Expected error for short key, got nil")
	}

	// 缺失的 API Key
	err = rule.ValidateVar("", "required,min=8")
	if err == nil {
		t.Error("Expected error for empty key, got nil")
	}
}

// TestErrors 测试验证错误展开为字段到消息的映射.
func TestErrors(t *testing.T) {
	err := rule.ValidateStruct(TestStruct{Name: "", Age: 16})
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	fields := rule.Errors(err)
	if len(fields) != 2 {
		t.Errorf("Expected 2 field errors, got %d: %v", len(fields), fields)
	}

	if fields["Name"] != "required" {
		t.Errorf("Expected Name error %q, got %q", "required", fields["Name"])
	}

	if fields["Age"] != "gte" {
		t.Errorf("Expected Age error %q, got %q", "gte", fields["Age"])
	}
}

// TestRegisterValidation 测试注册自定义验证.
func TestRegisterValidation(t *testing.T) {
	// 注册自定义验证：检查字符串长度是否为偶数
	err := rule.RegisterValidation("even_length", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(str)%2 == 0
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	// 测试有效字符串
	err = rule.ValidateVar("test", "even_length")
	if err != nil {
		t.Errorf("Expected no error for even length string, got %v", err)
	}

	// 测试无效字符串
	err = rule.ValidateVar("test1", "even_length")
	if err == nil {
		t.Error("Expected error for odd length string, got nil")
	}
}

// TestRegisterAlias 测试注册别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("storage_key", "required,min=8")

	// 测试有效字符串
	err := rule.ValidateVar("abcdefgh", "storage_key")
	if err != nil {
		t.Errorf("Expected no error for valid string with alias, got %v", err)
	}

	// 测试无效字符串
	err = rule.ValidateVar("ab", "storage_key")
	if err == nil {
		t.Error("Expected error for invalid string with alias, got nil")
	}
}
