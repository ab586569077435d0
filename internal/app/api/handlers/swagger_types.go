package handlers

import (
	batchsvc "github.com/ovenline/bakehouse/internal/app/service/batch"
	ordersvc "github.com/ovenline/bakehouse/internal/app/service/order"
	"github.com/ovenline/bakehouse/internal/app/service/statistics"
	"github.com/ovenline/bakehouse/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespAvailability wraps the availability slots in the standard envelope.
type RespAvailability struct {
	Code    response.APIResponseCode    `json:"code"`
	Message string                      `json:"message"`
	Data    []batchsvc.AvailabilitySlot `json:"data"`
}

// RespScanOrders wraps ScanOrdersResponse in the standard envelope.
type RespScanOrders struct {
	Code    response.APIResponseCode    `json:"code"`
	Message string                      `json:"message"`
	Data    ordersvc.ScanOrdersResponse `json:"data"`
}

// RespSalesStatistic wraps SalesStatisticResponse in the standard envelope.
type RespSalesStatistic struct {
	Code    response.APIResponseCode          `json:"code"`
	Message string                            `json:"message"`
	Data    statistics.SalesStatisticResponse `json:"data"`
}
