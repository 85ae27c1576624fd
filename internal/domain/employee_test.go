package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	valid := []string{
		"jane@example.com",
		"jane.doe@mail.example.co",
		"j+tag@sub.domain.io",
	}
	for _, email := range valid {
		assert.True(t, ValidEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"no-at-sign.com",
		"two@@example.com",
		"spaces in@example.com",
		"jane@nodot",
	}
	for _, email := range invalid {
		assert.False(t, ValidEmail(email), email)
	}
}

func TestValidPassword(t *testing.T) {
	assert.False(t, ValidPassword(""))
	assert.False(t, ValidPassword("12345"))
	assert.True(t, ValidPassword("123456"))
	assert.True(t, ValidPassword("correct horse battery staple"))
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, NormalizeRole("admin"))
	assert.Equal(t, RoleEmployee, NormalizeRole("employee"))
	assert.Equal(t, RoleEmployee, NormalizeRole(""))
	assert.Equal(t, RoleEmployee, NormalizeRole("superuser"))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&Employee{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&Employee{Role: RoleEmployee}).IsAdmin())
}
