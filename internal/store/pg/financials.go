package pg

import (
	"context"
	"encoding/json"
	"fmt"

	"ideora.org/internal/ids"
	"ideora.org/internal/platform"
)

type financialStore Store

const financialColumns = `id, ideation_id, direct_material, direct_expense, item_input, direct_labor,
	manufacturing_cost, profit_rate, sale_price, salary, office_rent, ad_cost, business_expense,
	maintenance_cost, contingency, total_expense, salary_increase_rate, office_rent_increase_rate,
	ad_cost_increase_rate, business_expense_increase_rate, maintenance_cost_increase_rate,
	contingency_increase_rate, trade_counts, employee_counts, created_at, updated_at`

func scanFinancial(row interface{ Scan(...any) error }) (*platform.Financial, error) {
	var (
		f         platform.Financial
		trades    []byte
		employees []byte
	)
	err := row.Scan(&f.ID, &f.IdeationID, &f.DirectMaterial, &f.DirectExpense, &f.ItemInput,
		&f.DirectLabor, &f.ManufacturingCost, &f.ProfitRate, &f.SalePrice, &f.Salary,
		&f.OfficeRent, &f.AdCost, &f.BusinessExpense, &f.MaintenanceCost, &f.Contingency,
		&f.TotalExpense, &f.SalaryIncreaseRate, &f.OfficeRentIncreaseRate, &f.AdCostIncreaseRate,
		&f.BusinessExpenseIncreaseRate, &f.MaintenanceCostIncreaseRate, &f.ContingencyIncreaseRate,
		&trades, &employees, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if len(trades) > 0 {
		if err := json.Unmarshal(trades, &f.TradeCounts); err != nil {
			return nil, fmt.Errorf("decode trade counts: %w", err)
		}
	}
	if len(employees) > 0 {
		if err := json.Unmarshal(employees, &f.EmployeeCounts); err != nil {
			return nil, fmt.Errorf("decode employee counts: %w", err)
		}
	}
	return &f, nil
}

func countsJSON(counts []int64) ([]byte, error) {
	if counts == nil {
		counts = []int64{}
	}
	return json.Marshal(counts)
}

func (s *financialStore) Create(ctx context.Context, f *platform.Financial) error {
	if f.ID == "" {
		f.ID = ids.New()
	}
	trades, err := countsJSON(f.TradeCounts)
	if err != nil {
		return err
	}
	employees, err := countsJSON(f.EmployeeCounts)
	if err != nil {
		return err
	}
	err = s.db.QueryRowContext(ctx, `
		insert into financials (id, ideation_id, direct_material, direct_expense, item_input,
			direct_labor, manufacturing_cost, profit_rate, sale_price, salary, office_rent,
			ad_cost, business_expense, maintenance_cost, contingency, total_expense,
			salary_increase_rate, office_rent_increase_rate, ad_cost_increase_rate,
			business_expense_increase_rate, maintenance_cost_increase_rate,
			contingency_increase_rate, trade_counts, employee_counts)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24)
		returning created_at, updated_at
	`, f.ID, f.IdeationID, f.DirectMaterial, f.DirectExpense, f.ItemInput, f.DirectLabor,
		f.ManufacturingCost, f.ProfitRate, f.SalePrice, f.Salary, f.OfficeRent, f.AdCost,
		f.BusinessExpense, f.MaintenanceCost, f.Contingency, f.TotalExpense,
		f.SalaryIncreaseRate, f.OfficeRentIncreaseRate, f.AdCostIncreaseRate,
		f.BusinessExpenseIncreaseRate, f.MaintenanceCostIncreaseRate, f.ContingencyIncreaseRate,
		trades, employees).Scan(&f.CreatedAt, &f.UpdatedAt)
	return translate(err)
}

func (s *financialStore) FindByIdeation(ctx context.Context, ideationID string) (*platform.Financial, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from financials where ideation_id = $1`, financialColumns), ideationID)
	return scanFinancial(row)
}

// Update replaces the whole plan; partial edits of a cost sheet are
// not meaningful.
func (s *financialStore) Update(ctx context.Context, ideationID string, f *platform.Financial) (*platform.Financial, error) {
	trades, err := countsJSON(f.TradeCounts)
	if err != nil {
		return nil, err
	}
	employees, err := countsJSON(f.EmployeeCounts)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		update financials set
			direct_material = $2, direct_expense = $3, item_input = $4, direct_labor = $5,
			manufacturing_cost = $6, profit_rate = $7, sale_price = $8, salary = $9,
			office_rent = $10, ad_cost = $11, business_expense = $12, maintenance_cost = $13,
			contingency = $14, total_expense = $15, salary_increase_rate = $16,
			office_rent_increase_rate = $17, ad_cost_increase_rate = $18,
			business_expense_increase_rate = $19, maintenance_cost_increase_rate = $20,
			contingency_increase_rate = $21, trade_counts = $22, employee_counts = $23,
			updated_at = now()
		where ideation_id = $1
		returning %s
	`, financialColumns), ideationID, f.DirectMaterial, f.DirectExpense, f.ItemInput,
		f.DirectLabor, f.ManufacturingCost, f.ProfitRate, f.SalePrice, f.Salary, f.OfficeRent,
		f.AdCost, f.BusinessExpense, f.MaintenanceCost, f.Contingency, f.TotalExpense,
		f.SalaryIncreaseRate, f.OfficeRentIncreaseRate, f.AdCostIncreaseRate,
		f.BusinessExpenseIncreaseRate, f.MaintenanceCostIncreaseRate, f.ContingencyIncreaseRate,
		trades, employees)
	return scanFinancial(row)
}

func (s *financialStore) DeleteByIdeation(ctx context.Context, ideationID string) error {
	res, err := s.db.ExecContext(ctx, `delete from financials where ideation_id = $1`, ideationID)
	if err != nil {
		return translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return platform.ErrNotFound
	}
	return nil
}
