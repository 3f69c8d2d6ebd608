package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("ticket_types")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true},
			&core.SelectField{Name: "type", Values: []string{"regular", "student", "vip"}, MaxSelect: 1},
			&core.NumberField{Name: "price", Required: true, Min: types.Pointer(0.0)},
			&core.TextField{Name: "currency"},
			&core.NumberField{Name: "quantity_total", Min: types.Pointer(0.0)},
			&core.BoolField{Name: "active"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_ticket_types_active", false, "active", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("ticket_types")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
