package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"hospital-portal/internal/models"
)

// ── Departments ──────────────────────────────────────────────

// ActiveDepartments lists departments with status Active.
func (c *Client) ActiveDepartments(ctx context.Context) ([]models.Department, error) {
	var out []models.Department
	if err := c.do(ctx, http.MethodGet, "/departments/active", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDepartments(ctx context.Context) (*models.DepartmentList, error) {
	var out models.DepartmentList
	if err := c.do(ctx, http.MethodGet, "/departments/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateDepartment(ctx context.Context, req models.DepartmentRequest) (*models.Department, error) {
	var out models.CreateDepartmentResponse
	if err := c.do(ctx, http.MethodPost, "/departments/", req, &out); err != nil {
		return nil, err
	}
	return &out.Department, nil
}

func (c *Client) UpdateDepartment(ctx context.Context, id int, req models.DepartmentRequest) (*models.Department, error) {
	var out models.Department
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/departments/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDepartment(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/departments/%d", id), nil, nil)
}

// ── Users ────────────────────────────────────────────────────

// ListUsers returns one page of accounts. limit is capped at 100 by the backend.
func (c *Client) ListUsers(ctx context.Context, skip, limit int) (*models.UserList, error) {
	q := url.Values{}
	q.Set("skip", fmt.Sprint(skip))
	q.Set("limit", fmt.Sprint(limit))

	var out models.UserList
	if err := c.do(ctx, http.MethodGet, "/users/?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id int) (*models.UserRecord, error) {
	var out models.UserRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.UserRecord, error) {
	var out models.CreateUserResponse
	if err := c.do(ctx, http.MethodPost, "/users/", req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int, req models.UpdateUserRequest) (*models.UserRecord, error) {
	var out models.UserRecord
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePassword(ctx context.Context, id int, req models.PasswordUpdateRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d/password", id), req, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}
