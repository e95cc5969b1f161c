package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/daybook/internal/models"
)

type InterestCmd struct {
	Add    InterestAddCmd    `cmd:"" help:"Add an interest area."`
	List   InterestListCmd   `cmd:"" help:"List interest areas."`
	Delete InterestDeleteCmd `cmd:"" help:"Delete an interest area."`
}

type InterestAddCmd struct {
	Name  string `arg:"" help:"Interest area name."`
	Color string `help:"Display color (hex or terminal color name)."`
	Order int    `help:"Sort order on the dashboard." default:"0"`
}

func (c *InterestAddCmd) Run(ctx *Context) error {
	areas, err := ctx.Store.Provider().GetAllInterests()
	if err != nil {
		return err
	}
	for _, area := range areas {
		if area.Name == c.Name {
			return fmt.Errorf("interest area %q already exists", c.Name)
		}
	}

	now := time.Now()
	area := models.InterestArea{
		ID:        uuid.New().String(),
		Name:      c.Name,
		Color:     c.Color,
		SortOrder: c.Order,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := ctx.Store.UpsertInterest(area); err != nil {
		return err
	}

	fmt.Printf("Added interest area: %s\n", c.Name)
	return nil
}

type InterestListCmd struct{}

func (c *InterestListCmd) Run(ctx *Context) error {
	areas, err := ctx.Store.Provider().GetAllInterests()
	if err != nil {
		return err
	}

	if len(areas) == 0 {
		fmt.Println("No interest areas found.")
		return nil
	}

	for _, area := range areas {
		fmt.Println(area.Name)
	}
	return nil
}

type InterestDeleteCmd struct {
	Name string `arg:"" help:"Interest area name."`
}

func (c *InterestDeleteCmd) Run(ctx *Context) error {
	areas, err := ctx.Store.Provider().GetAllInterests()
	if err != nil {
		return err
	}

	for _, area := range areas {
		if area.Name == c.Name {
			if err := ctx.Store.DeleteInterest(area.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted interest area: %s\n", c.Name)
			return nil
		}
	}

	return fmt.Errorf("interest area %q not found", c.Name)
}
