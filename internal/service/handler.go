package service

import (
	"net/http"

	"connectrpc.com/connect"
)

const (
	// LedgerServiceName is the fully-qualified name of the LedgerService.
	LedgerServiceName = "roomledger.v1.LedgerService"
	// AuthServiceName is the fully-qualified name of the AuthService.
	AuthServiceName = "roomledger.v1.AuthService"
)

// Procedure paths of the LedgerService and AuthService RPCs.
const (
	LedgerServiceGetDashboardProcedure     = "/roomledger.v1.LedgerService/GetDashboard"
	LedgerServiceListExpensesProcedure     = "/roomledger.v1.LedgerService/ListExpenses"
	LedgerServiceAddExpenseProcedure       = "/roomledger.v1.LedgerService/AddExpense"
	LedgerServiceDeleteExpenseProcedure    = "/roomledger.v1.LedgerService/DeleteExpense"
	LedgerServiceListPeopleProcedure       = "/roomledger.v1.LedgerService/ListPeople"
	LedgerServiceAddPersonProcedure        = "/roomledger.v1.LedgerService/AddPerson"
	LedgerServiceDeletePersonProcedure     = "/roomledger.v1.LedgerService/DeletePerson"
	LedgerServiceUpdateBudgetProcedure     = "/roomledger.v1.LedgerService/UpdateBudget"
	LedgerServiceGetSettlementsProcedure   = "/roomledger.v1.LedgerService/GetSettlements"
	LedgerServiceSettleWithProcedure       = "/roomledger.v1.LedgerService/SettleWith"
	LedgerServiceGetGroupBalancesProcedure = "/roomledger.v1.LedgerService/GetGroupBalances"
	LedgerServiceGetSnapshotProcedure      = "/roomledger.v1.LedgerService/GetSnapshot"

	AuthServiceLoginProcedure  = "/roomledger.v1.AuthService/Login"
	AuthServiceLogoutProcedure = "/roomledger.v1.AuthService/Logout"
	AuthServiceWhoAmIProcedure = "/roomledger.v1.AuthService/WhoAmI"
)

// PublicProcedures lists the procedures callable without a session token.
var PublicProcedures = []string{AuthServiceLoginProcedure}

// NewLedgerServiceHandler builds an HTTP handler for the LedgerService and
// returns the path on which to mount it. The JSON codec is always installed.
func NewLedgerServiceHandler(svc *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)

	mux := http.NewServeMux()
	mux.Handle(LedgerServiceGetDashboardProcedure, connect.NewUnaryHandler(LedgerServiceGetDashboardProcedure, svc.GetDashboard, opts...))
	mux.Handle(LedgerServiceListExpensesProcedure, connect.NewUnaryHandler(LedgerServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(LedgerServiceAddExpenseProcedure, connect.NewUnaryHandler(LedgerServiceAddExpenseProcedure, svc.AddExpense, opts...))
	mux.Handle(LedgerServiceDeleteExpenseProcedure, connect.NewUnaryHandler(LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(LedgerServiceListPeopleProcedure, connect.NewUnaryHandler(LedgerServiceListPeopleProcedure, svc.ListPeople, opts...))
	mux.Handle(LedgerServiceAddPersonProcedure, connect.NewUnaryHandler(LedgerServiceAddPersonProcedure, svc.AddPerson, opts...))
	mux.Handle(LedgerServiceDeletePersonProcedure, connect.NewUnaryHandler(LedgerServiceDeletePersonProcedure, svc.DeletePerson, opts...))
	mux.Handle(LedgerServiceUpdateBudgetProcedure, connect.NewUnaryHandler(LedgerServiceUpdateBudgetProcedure, svc.UpdateBudget, opts...))
	mux.Handle(LedgerServiceGetSettlementsProcedure, connect.NewUnaryHandler(LedgerServiceGetSettlementsProcedure, svc.GetSettlements, opts...))
	mux.Handle(LedgerServiceSettleWithProcedure, connect.NewUnaryHandler(LedgerServiceSettleWithProcedure, svc.SettleWith, opts...))
	mux.Handle(LedgerServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(LedgerServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	mux.Handle(LedgerServiceGetSnapshotProcedure, connect.NewUnaryHandler(LedgerServiceGetSnapshotProcedure, svc.GetSnapshot, opts...))
	return "/" + LedgerServiceName + "/", mux
}

// NewAuthServiceHandler builds an HTTP handler for the AuthService and
// returns the path on which to mount it.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)

	mux := http.NewServeMux()
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceLogoutProcedure, connect.NewUnaryHandler(AuthServiceLogoutProcedure, svc.Logout, opts...))
	mux.Handle(AuthServiceWhoAmIProcedure, connect.NewUnaryHandler(AuthServiceWhoAmIProcedure, svc.WhoAmI, opts...))
	return "/" + AuthServiceName + "/", mux
}
