package models

import (
	"bitbucket.org/mmdatafocus/fuelstation_backend/utils"
)

type RedisCleaner interface {
	RemoveInstanceRedis() error // remove one
	RemoveAllRedis() error      // remove list & map if exists
}

// remove both item & list + map
func RemoveRedisBoth[T RedisCleaner](obj T) error {
	if err := obj.RemoveInstanceRedis(); err != nil {
		return err
	}
	if err := obj.RemoveAllRedis(); err != nil {
		return err
	}
	return nil
}

func (obj FuelProduct) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[FuelProduct](obj.ID)
}

func (obj FuelProduct) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllFuelProduct](obj.StationId); err != nil {
		return err
	}
	return utils.RemoveRedisMap[AllFuelProduct](obj.StationId)
}

func (obj Tank) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[Tank](obj.ID)
}

func (obj Tank) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllTank](obj.StationId); err != nil {
		return err
	}
	return utils.RemoveRedisMap[AllTank](obj.StationId)
}

func (obj Customer) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[Customer](obj.ID)
}

func (obj Customer) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllCustomer](obj.StationId); err != nil {
		return err
	}
	return utils.RemoveRedisMap[AllCustomer](obj.StationId)
}

func (obj Supplier) RemoveInstanceRedis() error {
	return utils.RemoveRedisItem[Supplier](obj.ID)
}

func (obj Supplier) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllSupplier](obj.StationId); err != nil {
		return err
	}
	return utils.RemoveRedisMap[AllSupplier](obj.StationId)
}
