package storage

import (
	"context"
	"fmt"
	"strings"

	"finboard/internal/core"
)

const categoryColumns = `id, COALESCE(user_id, ''), name, type, icon, color, parent_category_id, is_system`

const systemCategoriesKey = "categories:system"

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, nullIDCol{&c.ParentID}, &c.IsSystem)
	return c, err
}

func (r *Repository) scanCategories(ctx context.Context, q string, args ...any) ([]core.Category, error) {
	rows, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// SystemCategories returns the shared categories. They are immutable, so
// the result is served from the cache when one is configured.
func (r *Repository) SystemCategories(ctx context.Context) ([]core.Category, error) {
	if r.systemCategories != nil {
		if cats, ok := r.systemCategories.Get(systemCategoriesKey); ok {
			return append([]core.Category(nil), cats...), nil
		}
	}
	cats, err := r.scanCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE is_system = ? ORDER BY type, name`, true)
	if err != nil {
		return nil, fmt.Errorf("list system categories: %w", err)
	}
	if r.systemCategories != nil {
		r.systemCategories.Set(systemCategoriesKey, cats)
	}
	return append([]core.Category(nil), cats...), nil
}

// ListCategories returns the user's own categories followed by the system ones.
// An empty typ returns both income and expense categories.
func (r *Repository) ListCategories(ctx context.Context, userID string, typ core.CategoryType) ([]core.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ?`
	args := []any{userID}
	if typ != "" {
		q += ` AND type = ?`
		args = append(args, typ)
	}
	own, err := r.scanCategories(ctx, q+` ORDER BY type, name`, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	system, err := r.SystemCategories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range system {
		if typ == "" || c.Type == typ {
			own = append(own, c)
		}
	}
	return own, nil
}

// GetCategory returns a category visible to the user: their own or a system one.
func (r *Repository) GetCategory(ctx context.Context, userID string, id int64) (core.Category, error) {
	c, err := scanCategory(r.queryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND (user_id = ? OR is_system = ?)`,
		id, userID, true))
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, notFound(err))
	}
	return c, nil
}

// likeEscaper makes LIKE wildcards in a fragment match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FindCategory returns the first visible category of the given type whose
// name contains fragment, case-insensitively. User categories win over
// system ones.
func (r *Repository) FindCategory(ctx context.Context, userID, fragment string, typ core.CategoryType) (core.Category, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(fragment))) + "%"
	c, err := scanCategory(r.queryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE (user_id = ? OR is_system = ?) AND type = ? AND LOWER(name) LIKE ? ESCAPE '\'
		ORDER BY is_system, id
		LIMIT 1`,
		userID, true, typ, pattern))
	if err != nil {
		return core.Category{}, fmt.Errorf("find category %q: %w", fragment, notFound(err))
	}
	return c, nil
}

// FindSystemCategory looks up a system category by exact name and type.
func (r *Repository) FindSystemCategory(ctx context.Context, name string, typ core.CategoryType) (core.Category, error) {
	cats, err := r.SystemCategories(ctx)
	if err != nil {
		return core.Category{}, err
	}
	for _, c := range cats {
		if c.Name == name && c.Type == typ {
			return c, nil
		}
	}
	return core.Category{}, fmt.Errorf("system category %q: %w", name, core.ErrNotFound)
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	id, err := r.insert(ctx, `
		INSERT INTO categories (name, type, icon, color, parent_category_id, user_id, is_system)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Type, c.Icon, c.Color, nullableID(c.ParentID), c.UserID, false)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	logWrite(ctx, "category", id, c.UserID)
	return r.GetCategory(ctx, c.UserID, id)
}

// UpdateCategory changes a user-owned category. System categories are
// rejected with ErrImmutableCategory.
func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	existing, err := r.GetCategory(ctx, c.UserID, c.ID)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return core.ErrImmutableCategory
	}
	err = r.execOwned(ctx, `
		UPDATE categories SET name = ?, icon = ?, color = ?, parent_category_id = ?
		WHERE id = ? AND user_id = ?`,
		c.Name, c.Icon, c.Color, nullableID(c.ParentID), c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return nil
}
