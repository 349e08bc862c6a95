package database

import (
	"errors"
	"fmt"

	"warden/internal/domain"

	"gorm.io/gorm"
)

var ErrScheduleNotFound = errors.New("schedule not found")

func GetSchedules() ([]domain.Schedule, error) {
	if DB == nil {
		return nil, fmt.Errorf("schedule: database connection was not initialised")
	}

	var schedules []domain.Schedule
	if err := DB.
		Order("created_at ASC").
		Find(&schedules).Error; err != nil {
		return nil, err
	}

	return schedules, nil
}

func CreateSchedule(schedule domain.Schedule) (domain.Schedule, error) {
	if DB == nil {
		return domain.Schedule{}, fmt.Errorf("schedule: database connection was not initialised")
	}

	if err := schedule.Validate(); err != nil {
		return domain.Schedule{}, err
	}

	schedule.ID = 0
	if err := DB.Create(&schedule).Error; err != nil {
		return domain.Schedule{}, err
	}

	return schedule, nil
}

func UpdateSchedule(scheduleID uint, update domain.Schedule) (*domain.Schedule, error) {
	if DB == nil {
		return nil, fmt.Errorf("schedule: database connection was not initialised")
	}

	if err := update.Validate(); err != nil {
		return nil, err
	}

	var schedule domain.Schedule
	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&schedule, scheduleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScheduleNotFound
			}
			return err
		}

		payload := map[string]interface{}{
			"name":            update.Name,
			"start_minute":    update.StartMinute,
			"end_minute":      update.EndMinute,
			"weekdays":        update.Weekdays,
			"is_active":       update.IsActive,
			"list_ids":        update.ListIDs,
			"direct_item_ids": update.DirectItemIDs,
		}
		if err := tx.Model(&schedule).Updates(payload).Error; err != nil {
			return err
		}

		return tx.First(&schedule, scheduleID).Error
	})
	if err != nil {
		return nil, err
	}

	return &schedule, nil
}

func DeleteSchedule(scheduleID uint) error {
	if DB == nil {
		return fmt.Errorf("schedule: database connection was not initialised")
	}

	res := DB.Delete(&domain.Schedule{}, scheduleID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}
