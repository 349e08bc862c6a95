package remote

import (
	"context"
	"fmt"
	"net/http"

	"warden/internal/domain"
)

// Collection endpoints, each mapped 1:1 to an operation below.
const (
	pathBlockLists    = "/block-lists"
	pathSchedules     = "/schedules"
	pathAppCategories = "/app-categories"
)

func (c *Client) FetchBlockLists(ctx context.Context) ([]domain.BlockList, error) {
	var lists []domain.BlockList
	if err := c.do(ctx, http.MethodGet, pathBlockLists, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *Client) FetchSchedules(ctx context.Context) ([]domain.Schedule, error) {
	var schedules []domain.Schedule
	if err := c.do(ctx, http.MethodGet, pathSchedules, nil, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (c *Client) FetchAppCategories(ctx context.Context) ([]domain.AppCategory, error) {
	var categories []domain.AppCategory
	if err := c.do(ctx, http.MethodGet, pathAppCategories, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateBlockList(ctx context.Context, list domain.BlockList) (domain.BlockList, error) {
	var created domain.BlockList
	if err := c.do(ctx, http.MethodPost, pathBlockLists, list, &created); err != nil {
		return domain.BlockList{}, err
	}
	return created, nil
}

func (c *Client) UpdateBlockList(ctx context.Context, list domain.BlockList) (domain.BlockList, error) {
	var updated domain.BlockList
	path := fmt.Sprintf("%s/%d", pathBlockLists, list.ID)
	if err := c.do(ctx, http.MethodPut, path, list, &updated); err != nil {
		return domain.BlockList{}, err
	}
	return updated, nil
}

func (c *Client) DeleteBlockList(ctx context.Context, id uint) error {
	return c.deleteResource(ctx, fmt.Sprintf("%s/%d", pathBlockLists, id))
}

// AddItems appends items to an existing list.
func (c *Client) AddItems(ctx context.Context, listID uint, items []domain.BlockItem) ([]domain.BlockItem, error) {
	var created []domain.BlockItem
	path := fmt.Sprintf("%s/%d/items", pathBlockLists, listID)
	if err := c.do(ctx, http.MethodPost, path, items, &created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) DeleteItem(ctx context.Context, listID, itemID uint) error {
	return c.deleteResource(ctx, fmt.Sprintf("%s/%d/items/%d", pathBlockLists, listID, itemID))
}

func (c *Client) CreateSchedule(ctx context.Context, schedule domain.Schedule) (domain.Schedule, error) {
	var created domain.Schedule
	if err := c.do(ctx, http.MethodPost, pathSchedules, schedule, &created); err != nil {
		return domain.Schedule{}, err
	}
	return created, nil
}

func (c *Client) UpdateSchedule(ctx context.Context, schedule domain.Schedule) (domain.Schedule, error) {
	var updated domain.Schedule
	path := fmt.Sprintf("%s/%d", pathSchedules, schedule.ID)
	if err := c.do(ctx, http.MethodPut, path, schedule, &updated); err != nil {
		return domain.Schedule{}, err
	}
	return updated, nil
}

func (c *Client) DeleteSchedule(ctx context.Context, id uint) error {
	return c.deleteResource(ctx, fmt.Sprintf("%s/%d", pathSchedules, id))
}

func (c *Client) UpdateAppCategory(ctx context.Context, category domain.AppCategory) (domain.AppCategory, error) {
	var updated domain.AppCategory
	path := fmt.Sprintf("%s/%d", pathAppCategories, category.ID)
	if err := c.do(ctx, http.MethodPut, path, category, &updated); err != nil {
		return domain.AppCategory{}, err
	}
	return updated, nil
}
